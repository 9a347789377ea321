package accounts

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-accounts/middleware/jwtware"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// RouteRegistrar captures the router methods used by the controller.
type RouteRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Put(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}

// HTTPController exposes the session manager as a JSON API.
type HTTPController struct {
	manager *SessionManager
	cfg     Config
	logger  Logger
	Debug   bool
}

func NewHTTPController(manager *SessionManager, cfg Config) *HTTPController {
	return &HTTPController{
		manager: manager,
		cfg:     cfg,
		logger:  defLogger{},
	}
}

func (c *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		c.logger = logger
	}
	return c
}

// RegisterRoutes mounts the account routes. Token-protected routes sit
// behind the JWT middleware built from the controller config.
func (c *HTTPController) RegisterRoutes(group RouteRegistrar) {
	protected := c.ProtectedRoute()

	group.Post("/auth/register", c.Register)
	group.Post("/auth/login", c.Login)
	group.Post("/auth/refresh", c.Refresh)
	group.Post("/auth/revoke", c.Revoke)
	group.Get("/auth/me", c.Me, protected)

	group.Get("/users/:id", c.GetUser, protected)
	group.Put("/users/:id", c.UpdateUser, protected)
	group.Delete("/users/:id", c.DeleteUser, protected)
}

// ProtectedRoute builds the JWT verification middleware using the
// controller's signing configuration. Verified claims are propagated to
// the request context so handlers can resolve the current identity.
func (c *HTTPController) ProtectedRoute() router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		return jwtware.New(jwtware.Config{
			ErrorHandler: c.authErrorHandler,
			SigningKey: jwtware.SigningKey{
				Key:    c.cfg.GetSigningKey(),
				JWTAlg: c.cfg.GetSigningMethod(),
			},
			AuthScheme:  c.cfg.GetAuthScheme(),
			ContextKey:  c.cfg.GetContextKey(),
			TokenLookup: c.cfg.GetTokenLookup(),
			TokenValidator: jwtware.TokenValidatorFunc(func(raw string) (jwtware.AuthClaims, error) {
				return c.manager.TokenSigner().Validate(raw)
			}),
			ContextEnricher: func(stdCtx context.Context, claims jwtware.AuthClaims) context.Context {
				if ac, ok := claims.(AuthClaims); ok {
					return WithClaimsContext(stdCtx, ac)
				}
				return stdCtx
			},
			SuccessHandler: hf,
		})
	}
}

// RegistrationCreatePayload is the register request body.
type RegistrationCreatePayload struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Phone           string `json:"phone_number"`
	Gender          string `json:"gender"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber("US"))),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

// LoginPayload is the login request body.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshTokenPayload carries the refresh token secret for refresh and
// revoke calls.
type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate will validate the payload
func (r RefreshTokenPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// UserUpdatePayload is the profile update request body.
type UserUpdatePayload struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	Phone     string `json:"phone_number"`
}

// Validate will validate the payload
func (r UserUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FirstName, validation.Length(1, 200)),
		validation.Field(&r.LastName, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.By(ValidatePhoneNumber("US"))),
	)
}

// Register creates a new account and returns its summary.
func (c *HTTPController) Register(ctx router.Context) error {
	payload := RegistrationCreatePayload{}
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("register parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		c.logger.Error("register validate payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "error validating payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	summary, err := c.manager.Register(ctx.Context(), Registration{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Phone:     payload.Phone,
		Gender:    payload.Gender,
		Password:  payload.Password,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}

	c.debugPrint(summary)

	return ctx.JSON(fiber.StatusCreated, summary)
}

// Login verifies credentials and returns the token pair.
func (c *HTTPController) Login(ctx router.Context) error {
	payload := LoginPayload{}
	if err := ctx.Bind(&payload); err != nil {
		c.logger.Error("login parse payload", "error", err)
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "error validating payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	result, err := c.manager.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// Refresh exchanges a refresh token for a new access token.
func (c *HTTPController) Refresh(ctx router.Context) error {
	payload := RefreshTokenPayload{}
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "error validating payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	result, err := c.manager.RefreshToken(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// Revoke clears the refresh token slot matching the presented secret.
func (c *HTTPController) Revoke(ctx router.Context) error {
	payload := RefreshTokenPayload{}
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "error validating payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	result, err := c.manager.RevokeRefreshToken(ctx.Context(), payload.RefreshToken)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// Me returns the account behind the verified access token.
func (c *HTTPController) Me(ctx router.Context) error {
	result, err := c.manager.CurrentUser(ctx.Context())
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, result)
}

// GetUser returns a user by id.
func (c *HTTPController) GetUser(ctx router.Context) error {
	id, err := c.paramID(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "invalid user id",
		})
	}

	summary, err := c.manager.GetByID(ctx.Context(), id)
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, summary)
}

// UpdateUser mutates profile fields on a user.
func (c *HTTPController) UpdateUser(ctx router.Context) error {
	id, err := c.paramID(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "invalid user id",
		})
	}

	payload := UserUpdatePayload{}
	if err := ctx.Bind(&payload); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "error parsing body",
		})
	}

	if err := payload.Validate(); err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error":      "error validating payload",
			"validation": FormatValidationErrorToMap(err),
		})
	}

	summary, err := c.manager.Update(ctx.Context(), id, UserUpdate{
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
		Gender:    payload.Gender,
		Phone:     payload.Phone,
	})
	if err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, summary)
}

// DeleteUser removes a user outright.
func (c *HTTPController) DeleteUser(ctx router.Context) error {
	id, err := c.paramID(ctx)
	if err != nil {
		return ctx.JSON(fiber.StatusBadRequest, map[string]any{
			"error": "invalid user id",
		})
	}

	if err := c.manager.Delete(ctx.Context(), id); err != nil {
		return c.renderError(ctx, err)
	}

	return ctx.JSON(fiber.StatusOK, map[string]any{
		"deleted": true,
	})
}

func (c *HTTPController) paramID(ctx router.Context) (uuid.UUID, error) {
	return uuid.Parse(ctx.Param("id"))
}

func (c *HTTPController) authErrorHandler(ctx router.Context, err error) error {
	if IsTokenExpiredError(err) {
		return ctx.JSON(fiber.StatusUnauthorized, map[string]any{
			"error": ErrTokenExpired.Message,
		})
	}
	return ctx.JSON(fiber.StatusUnauthorized, map[string]any{
		"error": ErrTokenMalformed.Message,
	})
}

func (c *HTTPController) renderError(ctx router.Context, err error) error {
	status := fiber.StatusInternalServerError
	message := "internal server error"

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		message = richErr.Message
		switch richErr.Category {
		case goerrors.CategoryAuth:
			status = fiber.StatusUnauthorized
		case goerrors.CategoryValidation, goerrors.CategoryBadInput:
			status = fiber.StatusBadRequest
		case goerrors.CategoryConflict:
			status = fiber.StatusConflict
		case goerrors.CategoryNotFound:
			status = fiber.StatusNotFound
		case goerrors.CategoryRateLimit:
			status = fiber.StatusTooManyRequests
		default:
			c.logger.Error("request failed", "error", err)
			message = "internal server error"
		}
	} else {
		c.logger.Error("request failed", "error", err)
	}

	body := map[string]any{"error": message}
	if richErr != nil && richErr.TextCode != "" {
		body["code"] = richErr.TextCode
	}

	return ctx.JSON(status, body)
}

func (c *HTTPController) debugPrint(res any) {
	if c.Debug {
		fmt.Println("================")
		fmt.Println(print.MaybePrettyJSON(res))
		fmt.Println("================")
	}
}
