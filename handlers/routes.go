package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/tech-arch1tect/storefront/config"
	"github.com/tech-arch1tect/storefront/middleware/csrf"
	"github.com/tech-arch1tect/storefront/middleware/ratelimit"
	"github.com/tech-arch1tect/storefront/openapi"
	"github.com/tech-arch1tect/storefront/session"
	"go.uber.org/fx"
)

const sessionScheme = "session"

type Routes struct {
	fx.In

	Config   *config.Config
	Auth     *AuthHandler
	User     *UserHandler
	Cart     *CartHandler
	Products *ProductHandler
	Sessions *session.Manager
	Tracker  *session.Tracker
	Limits   *ratelimit.Limits
	Doc      *openapi.OpenAPI
}

// RegisterRoutes mounts the JSON API. Session middleware is attached per
// route so static files are served without touching the session store.
func RegisterRoutes(e *echo.Echo, r Routes) {
	csrfGuard := csrf.Middleware(r.Config.CSRF, r.Config.Session)
	withSession := func(extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		mw := []echo.MiddlewareFunc{csrfGuard, session.Middleware(r.Sessions), session.TrackingMiddleware(r.Tracker)}
		return append(mw, extra...)
	}
	authed := withSession(session.RequireAuth())

	e.GET("/csrf-token", csrfToken, csrfGuard)

	e.POST("/send-verification-code", r.Auth.SendVerificationCode, withSession(r.Limits.CodeRequestsMiddleware())...)
	e.POST("/verify-code", r.Auth.VerifyCode, withSession()...)
	e.POST("/register", r.Auth.Register, withSession()...)
	e.POST("/login", r.Auth.Login, withSession(r.Limits.LoginMiddleware())...)
	e.POST("/logout", r.Auth.Logout, withSession()...)

	e.GET("/user/me", r.User.Me, authed...)
	e.GET("/user/sessions", r.User.Sessions, authed...)
	e.DELETE("/user/sessions/:id", r.User.RevokeSession, authed...)

	e.GET("/products", r.Products.List)

	e.GET("/cart", r.Cart.List, authed...)
	e.POST("/cart/add", r.Cart.Add, authed...)
	e.POST("/cart/update", r.Cart.Update, authed...)
	e.POST("/cart/remove", r.Cart.Remove, authed...)

	if r.Doc != nil {
		DocumentRoutes(r.Doc)
		e.GET("/openapi.json", r.Doc.JSONHandler())
		e.GET("/openapi.yaml", r.Doc.YAMLHandler())
	}
}

// csrfToken returns the token to send back in the X-CSRF-Token header. It
// is empty when CSRF protection is disabled.
func csrfToken(c echo.Context) error {
	return c.JSON(http.StatusOK, CSRFTokenResponse{Envelope: ok(""), Token: csrf.GetToken(c)})
}

func DocumentRoutes(doc *openapi.OpenAPI) {
	failure := Envelope{}

	doc.Document(http.MethodGet, "/csrf-token").
		Summary("CSRF token").
		Description("Sets the CSRF cookie and returns the token to echo in the X-CSRF-Token header of POST and DELETE requests.").
		Tags("auth").
		Response(http.StatusOK, CSRFTokenResponse{}, "Token issued").
		Build()

	doc.Document(http.MethodPost, "/send-verification-code").
		Summary("Send a verification code").
		Description("Issues a six digit code for the email address and mails it. A new request replaces any earlier code.").
		Tags("auth").
		Body(SendCodeRequest{}, "Email address to verify").
		Response(http.StatusOK, CodeSentResponse{}, "Code sent").
		Response(http.StatusBadRequest, failure, "Missing or disallowed email").
		Response(http.StatusTooManyRequests, failure, "Rate limited").
		Response(http.StatusBadGateway, failure, "Email could not be delivered").
		Build()

	doc.Document(http.MethodPost, "/verify-code").
		Summary("Check a verification code").
		Description("Checks the code without consuming it.").
		Tags("auth").
		Body(VerifyCodeRequest{}, "Email and code").
		Response(http.StatusOK, Envelope{}, "Code is valid").
		Response(http.StatusBadRequest, failure, "Invalid or expired code").
		Build()

	doc.Document(http.MethodPost, "/register").
		Summary("Create an account").
		Tags("auth").
		Body(RegisterRequest{}, "Account details and verification code").
		Response(http.StatusCreated, RegisterResponse{}, "Account created").
		Response(http.StatusBadRequest, failure, "Validation failed").
		Response(http.StatusConflict, failure, "Email already registered").
		Response(http.StatusBadGateway, failure, "Billing account could not be created").
		Build()

	doc.Document(http.MethodPost, "/login").
		Summary("Log in").
		Tags("auth").
		Body(LoginRequest{}, "Credentials").
		Response(http.StatusOK, LoginResponse{}, "Logged in, session cookie set").
		Response(http.StatusUnauthorized, failure, "Invalid email or password").
		Response(http.StatusTooManyRequests, failure, "Rate limited").
		Build()

	doc.Document(http.MethodPost, "/logout").
		Summary("Log out").
		Tags("auth").
		Response(http.StatusOK, Envelope{}, "Session destroyed").
		Build()

	doc.Document(http.MethodGet, "/user/me").
		Summary("Current account").
		Tags("user").
		Security(sessionScheme).
		Response(http.StatusOK, ProfileResponse{}, "Account profile").
		Response(http.StatusUnauthorized, failure, "No session").
		Build()

	doc.Document(http.MethodGet, "/user/sessions").
		Summary("Active sessions").
		Tags("user").
		Security(sessionScheme).
		Response(http.StatusOK, SessionsResponse{}, "Sessions of the account").
		Build()

	doc.Document(http.MethodDelete, "/user/sessions/:id").
		Summary("Revoke a session").
		Tags("user").
		Security(sessionScheme).
		Response(http.StatusOK, Envelope{}, "Session revoked").
		Response(http.StatusNotFound, failure, "No such session").
		Build()

	doc.Document(http.MethodGet, "/products").
		Summary("List products").
		Tags("catalog").
		Response(http.StatusOK, ProductsResponse{}, "Catalog").
		Build()

	doc.Document(http.MethodGet, "/cart").
		Summary("Cart contents").
		Tags("cart").
		Security(sessionScheme).
		Response(http.StatusOK, CartResponse{}, "Cart lines and total in cents").
		Build()

	doc.Document(http.MethodPost, "/cart/add").
		Summary("Add to cart").
		Description("Adds a line or increases the quantity of the matching product and color.").
		Tags("cart").
		Security(sessionScheme).
		Body(AddToCartRequest{}, "Product line").
		Response(http.StatusOK, CartItemResponse{}, "Line added or merged").
		Response(http.StatusBadRequest, failure, "Missing fields or bad quantity").
		Build()

	doc.Document(http.MethodPost, "/cart/update").
		Summary("Change a line quantity").
		Tags("cart").
		Security(sessionScheme).
		Body(UpdateCartRequest{}, "Line id and quantity").
		Response(http.StatusOK, Envelope{}, "Updated").
		Response(http.StatusNotFound, failure, "No such line in this cart").
		Build()

	doc.Document(http.MethodPost, "/cart/remove").
		Summary("Remove a line").
		Tags("cart").
		Security(sessionScheme).
		Body(RemoveFromCartRequest{}, "Line id").
		Response(http.StatusOK, Envelope{}, "Removed").
		Response(http.StatusNotFound, failure, "No such line in this cart").
		Build()
}
