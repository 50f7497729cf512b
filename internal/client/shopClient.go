package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"shopscript-storefront/internal/config"
	"shopscript-storefront/internal/model"
)

// TokenSource supplies the bearer token attached to every request and is told
// when the backend rejects it, so the owning session can drop its persisted
// identity.
type TokenSource interface {
	Token() string
	HandleUnauthorized()
}

var (
	// ErrInvalidCredentials is a 401 from the login endpoint itself: a
	// user-correctable error, never a session expiry.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrSessionExpired is a 401 from any other endpoint. The token source has
	// already been told to clear the session when this is returned.
	ErrSessionExpired = errors.New("session expired")
)

// APIError is any other non-2xx backend response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Body)
}

type ShopClient interface {
	Login(ctx context.Context, creds model.Credentials) (*model.JwtResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.JwtResponse, error)
	GetSecurityQuestion(ctx context.Context, username string) (string, error)
	ResetPasswordWithAnswer(ctx context.Context, req model.ResetPasswordRequest) error
	CreateUser(ctx context.Context, req model.RegisterRequest) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id int64, p *model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	ListOrders(ctx context.Context) ([]model.Order, error)
	ListUserOrders(ctx context.Context, userID int64) ([]model.Order, error)
	CreateOrder(ctx context.Context, userID int64, order *model.Order) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error)

	PendingReviews(ctx context.Context) ([]model.Review, error)
	ProductReviews(ctx context.Context, productID int64) ([]model.Review, error)
	CreateReview(ctx context.Context, productID, userID int64, review *model.Review) (*model.Review, error)
	SetReviewApproval(ctx context.Context, id int64, approved bool) (*model.Review, error)

	GetSettings(ctx context.Context) (map[string]string, error)
	UpdateSettings(ctx context.Context, settings map[string]string) error

	UploadImage(ctx context.Context, filename string, file io.Reader) (string, error)
}

type shopClientImpl struct {
	httpClient *http.Client
	baseApiURL string
	tokens     TokenSource
}

const loginPath = "/users/login"

// NewShopClient wraps the remote ShopScript backend. tokens may be nil for an
// unauthenticated client.
func NewShopClient(backendCfg *config.Backend, tokens TokenSource) ShopClient {
	return &shopClientImpl{
		httpClient: &http.Client{
			Timeout: backendCfg.Timeout,
		},
		baseApiURL: strings.TrimRight(backendCfg.BaseURL, "/"),
		tokens:     tokens,
	}
}

func (c *shopClientImpl) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal req payload: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseApiURL+path, body)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	return c.decode(resp, strings.HasPrefix(path, loginPath), out)
}

func (c *shopClientImpl) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *shopClientImpl) decode(resp *http.Response, isLogin bool, out any) error {
	if resp.StatusCode == http.StatusUnauthorized {
		if isLogin {
			return ErrInvalidCredentials
		}
		if c.tokens != nil {
			c.tokens.HandleUnauthorized()
		}
		return ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: string(b)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode backend response: %w", err)
		}
	}
	return nil
}

// -------- auth --------

func (c *shopClientImpl) Login(ctx context.Context, creds model.Credentials) (*model.JwtResponse, error) {
	var res model.JwtResponse
	if err := c.do(ctx, http.MethodPost, loginPath, creds, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) Register(ctx context.Context, req model.RegisterRequest) (*model.JwtResponse, error) {
	var res model.JwtResponse
	if err := c.do(ctx, http.MethodPost, "/users/register", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) GetSecurityQuestion(ctx context.Context, username string) (string, error) {
	var res model.SecurityQuestionResponse
	err := c.do(ctx, http.MethodPost, "/users/forgot-password/get-question",
		model.SecurityQuestionRequest{Username: username}, &res)
	if err != nil {
		return "", err
	}
	return res.Question, nil
}

func (c *shopClientImpl) ResetPasswordWithAnswer(ctx context.Context, req model.ResetPasswordRequest) error {
	return c.do(ctx, http.MethodPost, "/users/forgot-password/reset-with-answer", req, nil)
}

func (c *shopClientImpl) CreateUser(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var res model.User
	if err := c.do(ctx, http.MethodPost, "/users/create", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) ListUsers(ctx context.Context) ([]model.User, error) {
	var res []model.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// -------- catalog --------

func (c *shopClientImpl) ListProducts(ctx context.Context) ([]model.Product, error) {
	var res []model.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var res model.Product
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) CreateProduct(ctx context.Context, p *model.Product) (*model.Product, error) {
	var res model.Product
	if err := c.do(ctx, http.MethodPost, "/products", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) UpdateProduct(ctx context.Context, id int64, p *model.Product) (*model.Product, error) {
	var res model.Product
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/products/%d", id), p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/products/%d", id), nil, nil)
}

// -------- orders --------

func (c *shopClientImpl) ListOrders(ctx context.Context) ([]model.Order, error) {
	var res []model.Order
	if err := c.do(ctx, http.MethodGet, "/orders", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) ListUserOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	var res []model.Order
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/orders/user/%d", userID), nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) CreateOrder(ctx context.Context, userID int64, order *model.Order) (*model.Order, error) {
	var res model.Order
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/orders/user/%d", userID), order, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) UpdateOrderStatus(ctx context.Context, id int64, status model.OrderStatus) (*model.Order, error) {
	var res model.Order
	path := fmt.Sprintf("/orders/%d/status?status=%s", id, status)
	if err := c.do(ctx, http.MethodPut, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// -------- reviews --------

func (c *shopClientImpl) PendingReviews(ctx context.Context) ([]model.Review, error) {
	var res []model.Review
	if err := c.do(ctx, http.MethodGet, "/reviews/pending", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) ProductReviews(ctx context.Context, productID int64) ([]model.Review, error) {
	var res []model.Review
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/reviews/product/%d", productID), nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) CreateReview(ctx context.Context, productID, userID int64, review *model.Review) (*model.Review, error) {
	var res model.Review
	path := fmt.Sprintf("/reviews/product/%d/user/%d", productID, userID)
	if err := c.do(ctx, http.MethodPost, path, review, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *shopClientImpl) SetReviewApproval(ctx context.Context, id int64, approved bool) (*model.Review, error) {
	var res model.Review
	path := fmt.Sprintf("/reviews/%d/approval?approved=%t", id, approved)
	if err := c.do(ctx, http.MethodPut, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// -------- settings --------

func (c *shopClientImpl) GetSettings(ctx context.Context) (map[string]string, error) {
	var res map[string]string
	if err := c.do(ctx, http.MethodGet, "/settings", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *shopClientImpl) UpdateSettings(ctx context.Context, settings map[string]string) error {
	return c.do(ctx, http.MethodPost, "/settings", settings, nil)
}

// -------- media --------

func (c *shopClientImpl) UploadImage(ctx context.Context, filename string, file io.Reader) (string, error) {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)

	part, err := form.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("copy upload body: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseApiURL+"/uploads/image", &buf)
	if err != nil {
		return "", fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	var res struct {
		URL string `json:"url"`
	}
	if err := c.decode(resp, false, &res); err != nil {
		return "", err
	}
	return res.URL, nil
}
