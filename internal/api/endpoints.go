package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
)

// Login exchanges credentials for a token and identity fields.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, request{
		endpoint:    "login",
		method:      http.MethodPost,
		path:        "/auth/userlog",
		body:        credentialsRequest{Email: email, Password: password},
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, username, email, password string) (*AuthResult, error) {
	var result AuthResult
	err := c.do(ctx, request{
		endpoint:    "signup",
		method:      http.MethodPost,
		path:        "/auth/userreg",
		body:        credentialsRequest{Username: username, Email: email, Password: password},
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// FetchCart pulls the server-persisted cart.
func (c *Client) FetchCart(ctx context.Context) ([]CartEntry, error) {
	var result fetchCartResponse
	err := c.do(ctx, request{
		endpoint:    "fetch_cart",
		method:      http.MethodGet,
		path:        "/user/update-cart",
		authed:      true,
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return result.Cart.Courses, nil
}

// ReplaceCart overwrites the server cart with the given entries. The
// replacement is a batch operation, never an incremental one.
func (c *Client) ReplaceCart(ctx context.Context, entries []CartEntry) error {
	return c.do(ctx, request{
		endpoint: "replace_cart",
		method:   http.MethodPut,
		path:     "/user/update-cart",
		body:     replaceCartRequest{Cart: entries},
		authed:   true,
	})
}

// ReplaceWishlist overwrites the server wishlist with the course ids.
func (c *Client) ReplaceWishlist(ctx context.Context, courseIDs []string) error {
	return c.do(ctx, request{
		endpoint: "replace_wishlist",
		method:   http.MethodPut,
		path:     "/user/update-wishlist",
		body:     replaceWishlistRequest{Wishlist: courseIDs},
		authed:   true,
	})
}

// InitiatePayment asks the backend to mint a gateway order for the cart.
// Only a 200 with a gateway order id counts as success.
func (c *Client) InitiatePayment(ctx context.Context, items []PaymentItem) (*PendingPaymentOrder, error) {
	var result PendingPaymentOrder
	err := c.do(ctx, request{
		endpoint:    "initiate_payment",
		method:      http.MethodPost,
		path:        "/payment/initiate-payment",
		body:        items,
		authed:      true,
		wantStatus:  []int{http.StatusOK},
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	if result.GatewayOrderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeServer, "Failed to initiate payment")
	}
	return &result, nil
}

// VerifyPayment forwards the gateway's signed confirmation for the backend
// signature check. Anything but a 200 with an order payload is a
// verification failure.
func (c *Client) VerifyPayment(ctx context.Context, confirmation PaymentConfirmation) (*VerifiedOrder, error) {
	var result verifyPaymentResponse
	err := c.do(ctx, request{
		endpoint:    "verify_payment",
		method:      http.MethodPost,
		path:        "/payment/verify-payment",
		body:        confirmation,
		authed:      true,
		wantStatus:  []int{http.StatusOK},
		destination: &result,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeServer {
			return nil, pkgerrors.Wrap(pkgerrors.CodeVerification, typed, typed.Message())
		}
		return nil, err
	}
	if result.Order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeVerification, "")
	}
	return result.Order, nil
}

// OrderStatus returns the current user's order history.
func (c *Client) OrderStatus(ctx context.Context) ([]VerifiedOrder, error) {
	var result []VerifiedOrder
	err := c.do(ctx, request{
		endpoint:    "order_status",
		method:      http.MethodGet,
		path:        "/payment/order-status",
		authed:      true,
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllOrders returns every order on the platform; admin only.
func (c *Client) AllOrders(ctx context.Context) ([]VerifiedOrder, error) {
	var result []VerifiedOrder
	err := c.do(ctx, request{
		endpoint:    "all_orders",
		method:      http.MethodGet,
		path:        "/payment/all-orders",
		authed:      true,
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AllCourses searches the catalog; an empty search returns everything.
func (c *Client) AllCourses(ctx context.Context, search string) ([]Course, error) {
	var result []Course
	err := c.do(ctx, request{
		endpoint:    "all_courses",
		method:      http.MethodGet,
		path:        "/courses/allcourses?search=" + url.QueryEscape(search),
		authed:      true,
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SampleCourses returns the public landing-page catalog slice.
func (c *Client) SampleCourses(ctx context.Context) ([]Course, error) {
	var result []Course
	err := c.do(ctx, request{
		endpoint:    "sample_courses",
		method:      http.MethodGet,
		path:        "/courses/samplecourses",
		destination: &result,
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateProfile uploads profile fields plus an optional avatar file.
func (c *Client) UpdateProfile(ctx context.Context, fields map[string]string, avatarName string, avatar io.Reader) error {
	body := &multipartBody{fields: fields}
	if avatar != nil {
		body.files = map[string]multipartFile{
			"avatar": {name: avatarName, content: avatar},
		}
	}
	return c.do(ctx, request{
		endpoint:  "update_profile",
		method:    http.MethodPut,
		path:      "/user/updateprofile",
		multipart: body,
		authed:    true,
	})
}
