package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MarkoPoloResearchLab/staybook/internal/metrics"
	"github.com/MarkoPoloResearchLab/staybook/pkg/booking"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Machine-readable failure reasons exposed to clients.
const (
	reasonMissingFields      = "missing-fields"
	reasonInvalidPayload     = "invalid-payload"
	reasonDuplicateLoginName = "duplicate-loginName"
	reasonDuplicateEmail     = "duplicate-email"
	reasonBadCredentials     = "bad-credentials"
	reasonProfileMissing     = "profile-missing"
	reasonProfileNotFound    = "profile-not-found"
	reasonAlreadyReserved    = "already-reserved"
	reasonNotFound           = "not-found"
	reasonDuplicate          = "duplicate"
	reasonAuthFailed         = "external-auth-failed"
	reasonBillingFailed      = "external-billing-failed"
	reasonInternal           = "internal"

	dateLayout = "2006-01-02"
)

// Dependencies carries the wired services into the HTTP layer. Everything is
// constructor-injected so tests can substitute fakes.
type Dependencies struct {
	Logger       *zap.Logger
	Identity     *booking.IdentityService
	Reservations *booking.ReservationService
	Favorites    *booking.FavoritesService
	Instruments  *booking.InstrumentService
	Catalog      *booking.CatalogService
}

func (deps Dependencies) validate() error {
	if deps.Identity == nil || deps.Reservations == nil || deps.Favorites == nil || deps.Instruments == nil || deps.Catalog == nil {
		return fmt.Errorf("%w: missing service dependency", booking.ErrInvalidServiceConfig)
	}
	return nil
}

// Run boots the HTTP API using the supplied configuration and blocks until
// the context is cancelled or the server fails.
func Run(ctx context.Context, cfg Config, deps Dependencies) error {
	if err := deps.validate(); err != nil {
		return err
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	handler := &httpHandler{
		logger: deps.Logger,
		cfg:    cfg,
		deps:   deps,
	}
	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info("staybook api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			deps.Logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(metrics.GinMiddleware())
	router.Use(newRateLimiter(cfg.RatePerSecond, cfg.RateBurst).Middleware())

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/signup", handler.handleSignUp)
	router.POST("/login", handler.handleLogIn)
	router.POST("/logout", handler.handleLogOut)
	router.GET("/session", handler.handleSession)
	router.GET("/profiles/:subject", handler.handleProfile)

	router.POST("/lodgings", handler.handleCreateLodging)
	router.GET("/lodgings/:lodgingID", handler.handleGetLodging)
	router.GET("/lodgings/category/:category", handler.handleListByCategory)
	router.GET("/lodgings/search/:location", handler.handleSearchByLocation)
	router.PUT("/lodgings/:lodgingID/reserve", handler.handleReserve)

	router.GET("/favorites", handler.handleListFavorites)
	router.POST("/favorites", handler.handleAddFavorite)
	router.DELETE("/favorites", handler.handleRemoveFavorite)

	router.POST("/instruments", handler.handleAddInstrument)
	router.GET("/instruments", handler.handleListInstruments)
	router.DELETE("/instruments/:subject/:instrumentID", handler.handleRemoveInstrument)

	return router
}

type httpHandler struct {
	logger *zap.Logger
	cfg    Config
	deps   Dependencies
}

type signUpRequest struct {
	DisplayName string `json:"display_name"`
	LoginName   string `json:"login_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

type logInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type favoriteRequest struct {
	OwnerSubject string `json:"owner_subject"`
	LodgingID    string `json:"lodging_id"`
}

type instrumentRequest struct {
	OwnerSubject string `json:"owner_subject"`
	Token        string `json:"token"`
}

type lodgingRequest struct {
	LodgingID         string `json:"lodging_id"`
	Name              string `json:"name"`
	Location          string `json:"location"`
	PriceCents        int64  `json:"price_cents"`
	Capacity          int    `json:"capacity"`
	ImageRef          string `json:"image_ref"`
	CheckIn           string `json:"check_in"`
	CheckOut          string `json:"check_out"`
	RatingCount       int    `json:"rating_count"`
	ReviewCount       int    `json:"review_count"`
	Category          string `json:"category"`
	RoomCount         int    `json:"room_count"`
	BathCount         int    `json:"bath_count"`
	BedCount          int    `json:"bed_count"`
	BreakfastIncluded bool   `json:"breakfast_included"`
	WiFi              bool   `json:"wifi"`
}

type profilePayload struct {
	ProfileID       string `json:"profile_id"`
	DisplayName     string `json:"display_name"`
	LoginName       string `json:"login_name"`
	Email           string `json:"email"`
	AuthSubject     string `json:"auth_subject"`
	BillingCustomer string `json:"billing_customer"`
}

type lodgingPayload struct {
	LodgingID         string `json:"lodging_id"`
	Name              string `json:"name"`
	Location          string `json:"location"`
	PriceCents        int64  `json:"price_cents"`
	Capacity          int    `json:"capacity"`
	ImageRef          string `json:"image_ref"`
	CheckIn           string `json:"check_in"`
	CheckOut          string `json:"check_out"`
	RatingCount       int    `json:"rating_count"`
	ReviewCount       int    `json:"review_count"`
	Category          string `json:"category"`
	RoomCount         int    `json:"room_count"`
	BathCount         int    `json:"bath_count"`
	BedCount          int    `json:"bed_count"`
	BreakfastIncluded bool   `json:"breakfast_included"`
	WiFi              bool   `json:"wifi"`
	State             string `json:"state"`
}

type favoritePayload struct {
	FavoriteID   string `json:"favorite_id"`
	OwnerSubject string `json:"owner_subject"`
	LodgingID    string `json:"lodging_id"`
}

func (handler *httpHandler) handleSignUp(ctx *gin.Context) {
	var request signUpRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "expected JSON body"))
		return
	}
	displayName, err := booking.NewDisplayName(request.DisplayName)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "display_name is required"))
		return
	}
	loginName, err := booking.NewLoginName(request.LoginName)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "login_name is required"))
		return
	}
	email, err := booking.NewEmailAddress(request.Email)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "a valid email is required"))
		return
	}
	password, err := booking.NewPassword(request.Password)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "password is required"))
		return
	}

	profile, err := handler.deps.Identity.SignUp(ctx.Request.Context(), displayName, loginName, email, password)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrDuplicateLoginName):
		metrics.SignUpTotal.WithLabelValues(metrics.OutcomeConflict).Inc()
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonDuplicateLoginName, "login name already taken"))
		return
	case errors.Is(err, booking.ErrDuplicateEmail):
		metrics.SignUpTotal.WithLabelValues(metrics.OutcomeConflict).Inc()
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonDuplicateEmail, "email already registered"))
		return
	case errors.Is(err, booking.ErrAuthProvider):
		metrics.SignUpTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusBadGateway, errorResponse(reasonAuthFailed, "authenticator rejected the signup"))
		return
	case errors.Is(err, booking.ErrBillingProvider):
		metrics.SignUpTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusBadGateway, errorResponse(reasonBillingFailed, "billing provider rejected the signup"))
		return
	default:
		handler.logger.Error("signup failed", zap.Error(err))
		metrics.SignUpTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "signup failed"))
		return
	}
	metrics.SignUpTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	ctx.JSON(http.StatusOK, gin.H{"profile": profileResponse(profile)})
}

func (handler *httpHandler) handleLogIn(ctx *gin.Context) {
	var request logInRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "expected JSON body"))
		return
	}
	email, err := booking.NewEmailAddress(request.Email)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "a valid email is required"))
		return
	}
	password, err := booking.NewPassword(request.Password)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "password is required"))
		return
	}

	profile, err := handler.deps.Identity.LogIn(ctx.Request.Context(), email, password)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrBadCredentials):
		metrics.LogInTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
		ctx.JSON(http.StatusUnauthorized, errorResponse(reasonBadCredentials, "email or password is wrong"))
		return
	case errors.Is(err, booking.ErrProfileMissing):
		metrics.LogInTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		ctx.JSON(http.StatusNotFound, errorResponse(reasonProfileMissing, "no profile for this account"))
		return
	case errors.Is(err, booking.ErrAuthProvider):
		metrics.LogInTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusBadGateway, errorResponse(reasonAuthFailed, "authenticator unavailable"))
		return
	default:
		handler.logger.Error("login failed", zap.Error(err))
		metrics.LogInTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "login failed"))
		return
	}

	token, err := issueSessionToken(profile.AuthSubject, handler.cfg, time.Now())
	if err != nil {
		handler.logger.Error("session token issue failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "login failed"))
		return
	}
	metrics.LogInTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	ctx.SetCookie(handler.cfg.SessionCookieName, token, int(handler.cfg.SessionTTL.Seconds()), "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"profile": profileResponse(profile)})
}

func (handler *httpHandler) handleLogOut(ctx *gin.Context) {
	ctx.SetCookie(handler.cfg.SessionCookieName, "", -1, "/", "", false, true)
	ctx.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (handler *httpHandler) handleSession(ctx *gin.Context) {
	raw, err := ctx.Cookie(handler.cfg.SessionCookieName)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse(reasonBadCredentials, "missing session"))
		return
	}
	claims, err := parseSessionToken(raw, handler.cfg)
	if err != nil {
		ctx.JSON(http.StatusUnauthorized, errorResponse(reasonBadCredentials, "invalid session"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"subject": claims.Subject,
		"expires": claims.ExpiresAt.Unix(),
	})
}

func (handler *httpHandler) handleProfile(ctx *gin.Context) {
	subject, err := booking.NewAuthSubject(ctx.Param("subject"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "subject is required"))
		return
	}
	profile, err := handler.deps.Identity.ProfileBySubject(ctx.Request.Context(), subject)
	if errors.Is(err, booking.ErrProfileNotFound) {
		ctx.JSON(http.StatusNotFound, errorResponse(reasonNotFound, "no profile for this subject"))
		return
	}
	if err != nil {
		handler.logger.Error("profile lookup failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "profile lookup failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"profile": profileResponse(profile)})
}

func (handler *httpHandler) handleCreateLodging(ctx *gin.Context) {
	var request lodgingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonInvalidPayload, "expected JSON body"))
		return
	}
	lodging, err := lodgingFromRequest(request)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonInvalidPayload, err.Error()))
		return
	}
	err = handler.deps.Catalog.CreateLodging(ctx.Request.Context(), lodging)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrInvalidLodgingID):
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "lodging_id is required"))
		return
	case errors.Is(err, booking.ErrDuplicateLodging):
		ctx.JSON(http.StatusConflict, errorResponse(reasonDuplicate, "lodging already exists"))
		return
	default:
		handler.logger.Error("lodging create failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "lodging create failed"))
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"lodging": lodgingResponse(lodging)})
}

func (handler *httpHandler) handleGetLodging(ctx *gin.Context) {
	lodgingID, err := booking.NewLodgingID(ctx.Param("lodgingID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "lodging id is required"))
		return
	}
	lodging, err := handler.deps.Catalog.Lodging(ctx.Request.Context(), lodgingID)
	if errors.Is(err, booking.ErrLodgingNotFound) {
		ctx.JSON(http.StatusNotFound, errorResponse(reasonNotFound, "no such lodging"))
		return
	}
	if err != nil {
		handler.logger.Error("lodging lookup failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "lodging lookup failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lodging": lodgingResponse(lodging)})
}

func (handler *httpHandler) handleListByCategory(ctx *gin.Context) {
	lodgings, err := handler.deps.Catalog.ListByCategory(ctx.Request.Context(), ctx.Param("category"))
	if err != nil {
		handler.logger.Error("lodging list failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "lodging list failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lodgings": lodgingsResponse(lodgings)})
}

func (handler *httpHandler) handleSearchByLocation(ctx *gin.Context) {
	lodgings, err := handler.deps.Catalog.SearchByLocation(ctx.Request.Context(), ctx.Param("location"))
	if err != nil {
		handler.logger.Error("lodging search failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "lodging search failed"))
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"lodgings": lodgingsResponse(lodgings)})
}

func (handler *httpHandler) handleReserve(ctx *gin.Context) {
	lodgingID, err := booking.NewLodgingID(ctx.Param("lodgingID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "lodging id is required"))
		return
	}
	err = handler.deps.Reservations.Reserve(ctx.Request.Context(), lodgingID)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrAlreadyReserved):
		metrics.ReservationTotal.WithLabelValues(metrics.OutcomeConflict).Inc()
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonAlreadyReserved, "lodging is already reserved"))
		return
	case errors.Is(err, booking.ErrLodgingNotFound):
		metrics.ReservationTotal.WithLabelValues(metrics.OutcomeNotFound).Inc()
		ctx.JSON(http.StatusNotFound, errorResponse(reasonNotFound, "no such lodging"))
		return
	default:
		handler.logger.Error("reserve failed", zap.Error(err))
		metrics.ReservationTotal.WithLabelValues(metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "reserve failed"))
		return
	}
	metrics.ReservationTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	ctx.JSON(http.StatusOK, gin.H{"message": "lodging reserved"})
}

func (handler *httpHandler) handleListFavorites(ctx *gin.Context) {
	owner, err := booking.NewAuthSubject(ctx.Query("owner"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "owner is required"))
		return
	}
	favorites, err := handler.deps.Favorites.ListFavorites(ctx.Request.Context(), owner)
	if err != nil {
		handler.logger.Error("favorite list failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "favorite list failed"))
		return
	}
	payload := make([]favoritePayload, 0, len(favorites))
	for _, favorite := range favorites {
		payload = append(payload, favoriteResponse(favorite))
	}
	ctx.JSON(http.StatusOK, gin.H{"favorites": payload})
}

func (handler *httpHandler) handleAddFavorite(ctx *gin.Context) {
	owner, lodgingID, ok := handler.bindFavoritePair(ctx)
	if !ok {
		return
	}
	favorite, err := handler.deps.Favorites.AddFavorite(ctx.Request.Context(), owner, lodgingID)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrDuplicateFavorite):
		metrics.FavoriteTotal.WithLabelValues("add", metrics.OutcomeConflict).Inc()
		ctx.JSON(http.StatusConflict, errorResponse(reasonDuplicate, "favorite already exists"))
		return
	default:
		handler.logger.Error("favorite add failed", zap.Error(err))
		metrics.FavoriteTotal.WithLabelValues("add", metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "favorite add failed"))
		return
	}
	metrics.FavoriteTotal.WithLabelValues("add", metrics.OutcomeSuccess).Inc()
	ctx.JSON(http.StatusOK, gin.H{"favorite": favoriteResponse(*favorite)})
}

func (handler *httpHandler) handleRemoveFavorite(ctx *gin.Context) {
	owner, lodgingID, ok := handler.bindFavoritePair(ctx)
	if !ok {
		return
	}
	err := handler.deps.Favorites.RemoveFavorite(ctx.Request.Context(), owner, lodgingID)
	switch {
	case err == nil:
	case errors.Is(err, booking.ErrFavoriteNotFound):
		metrics.FavoriteTotal.WithLabelValues("remove", metrics.OutcomeNotFound).Inc()
		ctx.JSON(http.StatusNotFound, errorResponse(reasonNotFound, "no such favorite"))
		return
	default:
		handler.logger.Error("favorite remove failed", zap.Error(err))
		metrics.FavoriteTotal.WithLabelValues("remove", metrics.OutcomeError).Inc()
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, "favorite remove failed"))
		return
	}
	metrics.FavoriteTotal.WithLabelValues("remove", metrics.OutcomeSuccess).Inc()
	ctx.JSON(http.StatusOK, gin.H{"message": "favorite removed"})
}

func (handler *httpHandler) bindFavoritePair(ctx *gin.Context) (booking.AuthSubject, booking.LodgingID, bool) {
	var request favoriteRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "expected JSON body"))
		return booking.AuthSubject{}, booking.LodgingID{}, false
	}
	owner, err := booking.NewAuthSubject(request.OwnerSubject)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "owner_subject is required"))
		return booking.AuthSubject{}, booking.LodgingID{}, false
	}
	lodgingID, err := booking.NewLodgingID(request.LodgingID)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "lodging_id is required"))
		return booking.AuthSubject{}, booking.LodgingID{}, false
	}
	return owner, lodgingID, true
}

func (handler *httpHandler) handleAddInstrument(ctx *gin.Context) {
	var request instrumentRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "expected JSON body"))
		return
	}
	owner, err := booking.NewAuthSubject(request.OwnerSubject)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "owner_subject is required"))
		return
	}
	if request.Token == "" {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "token is required"))
		return
	}
	instrument, err := handler.deps.Instruments.AddInstrument(ctx.Request.Context(), owner, request.Token)
	if !handler.respondInstrumentError(ctx, err, "instrument add failed") {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"instrument": instrument})
}

func (handler *httpHandler) handleListInstruments(ctx *gin.Context) {
	owner, err := booking.NewAuthSubject(ctx.Query("owner"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "owner is required"))
		return
	}
	instruments, err := handler.deps.Instruments.ListInstruments(ctx.Request.Context(), owner)
	if !handler.respondInstrumentError(ctx, err, "instrument list failed") {
		return
	}
	if instruments == nil {
		instruments = []booking.Instrument{}
	}
	ctx.JSON(http.StatusOK, gin.H{"instruments": instruments})
}

func (handler *httpHandler) handleRemoveInstrument(ctx *gin.Context) {
	owner, err := booking.NewAuthSubject(ctx.Param("subject"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse(reasonMissingFields, "subject is required"))
		return
	}
	instrumentID := ctx.Param("instrumentID")
	err = handler.deps.Instruments.RemoveInstrument(ctx.Request.Context(), owner, instrumentID)
	if !handler.respondInstrumentError(ctx, err, "instrument remove failed") {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "instrument removed"})
}

// respondInstrumentError writes the error response for the pass-through
// endpoints. Returns true when err is nil and the caller should write its
// success payload.
func (handler *httpHandler) respondInstrumentError(ctx *gin.Context, err error, logMessage string) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, booking.ErrProfileNotFound), errors.Is(err, booking.ErrBillingNotLinked):
		ctx.JSON(http.StatusNotFound, errorResponse(reasonProfileNotFound, "no billing-linked profile for this subject"))
	case errors.Is(err, booking.ErrBillingProvider):
		ctx.JSON(http.StatusBadGateway, errorResponse(reasonBillingFailed, "billing provider rejected the request"))
	default:
		handler.logger.Error(logMessage, zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, errorResponse(reasonInternal, logMessage))
	}
	return false
}

func lodgingFromRequest(request lodgingRequest) (*booking.Lodging, error) {
	lodging := &booking.Lodging{
		LodgingID:         request.LodgingID,
		Name:              request.Name,
		Location:          request.Location,
		PriceCents:        request.PriceCents,
		Capacity:          request.Capacity,
		ImageRef:          request.ImageRef,
		RatingCount:       request.RatingCount,
		ReviewCount:       request.ReviewCount,
		Category:          request.Category,
		RoomCount:         request.RoomCount,
		BathCount:         request.BathCount,
		BedCount:          request.BedCount,
		BreakfastIncluded: request.BreakfastIncluded,
		WiFi:              request.WiFi,
	}
	if request.PriceCents < 0 {
		return nil, fmt.Errorf("price_cents must not be negative")
	}
	if request.Capacity < 0 {
		return nil, fmt.Errorf("capacity must not be negative")
	}
	if request.CheckIn != "" {
		checkIn, err := time.Parse(dateLayout, request.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("check_in must be YYYY-MM-DD")
		}
		lodging.CheckIn = checkIn
	}
	if request.CheckOut != "" {
		checkOut, err := time.Parse(dateLayout, request.CheckOut)
		if err != nil {
			return nil, fmt.Errorf("check_out must be YYYY-MM-DD")
		}
		lodging.CheckOut = checkOut
	}
	return lodging, nil
}

func profileResponse(profile *booking.UserProfile) profilePayload {
	return profilePayload{
		ProfileID:       profile.ProfileID,
		DisplayName:     profile.DisplayName,
		LoginName:       profile.LoginName,
		Email:           profile.Email,
		AuthSubject:     profile.AuthSubject,
		BillingCustomer: profile.BillingCustomer,
	}
}

func lodgingResponse(lodging *booking.Lodging) lodgingPayload {
	payload := lodgingPayload{
		LodgingID:         lodging.LodgingID,
		Name:              lodging.Name,
		Location:          lodging.Location,
		PriceCents:        lodging.PriceCents,
		Capacity:          lodging.Capacity,
		ImageRef:          lodging.ImageRef,
		RatingCount:       lodging.RatingCount,
		ReviewCount:       lodging.ReviewCount,
		Category:          lodging.Category,
		RoomCount:         lodging.RoomCount,
		BathCount:         lodging.BathCount,
		BedCount:          lodging.BedCount,
		BreakfastIncluded: lodging.BreakfastIncluded,
		WiFi:              lodging.WiFi,
		State:             lodging.State.String(),
	}
	if !lodging.CheckIn.IsZero() {
		payload.CheckIn = lodging.CheckIn.Format(dateLayout)
	}
	if !lodging.CheckOut.IsZero() {
		payload.CheckOut = lodging.CheckOut.Format(dateLayout)
	}
	return payload
}

func lodgingsResponse(lodgings []booking.Lodging) []lodgingPayload {
	payload := make([]lodgingPayload, 0, len(lodgings))
	for index := range lodgings {
		payload = append(payload, lodgingResponse(&lodgings[index]))
	}
	return payload
}

func favoriteResponse(favorite booking.Favorite) favoritePayload {
	return favoritePayload{
		FavoriteID:   favorite.FavoriteID,
		OwnerSubject: favorite.OwnerSubject,
		LodgingID:    favorite.LodgingID,
	}
}

func errorResponse(reason string, message string) gin.H {
	return gin.H{
		"reason":  reason,
		"message": message,
	}
}
