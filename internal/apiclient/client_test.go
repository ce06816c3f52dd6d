package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/retailer-dashboard/internal/cache"
	"github.com/spec-kit/retailer-dashboard/internal/domain"
	"github.com/spec-kit/retailer-dashboard/pkg/util/errorutil"
)

type staticToken string

func (t staticToken) AccessToken() string { return string(t) }

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, MediaBaseURL: "https://media.example.com/", Timeout: time.Second}, nil, nil, nil)
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func ok(data any) map[string]any {
	return map[string]any{"success": true, "statusCode": 200, "message": "ok", "data": data}
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "not a url"}, nil, nil, nil)
	assert.Error(t, err)
	_, err = New(Config{BaseURL: ""}, nil, nil, nil)
	assert.Error(t, err)
}

func TestBearerTokenInjection(t *testing.T) {
	var got []string
	var mu sync.Mutex
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		got = append(got, r.Header.Get("Authorization"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, ok(map[string]any{"id": "1", "email": "a@b.com", "name": "Asha"}))
	})

	_, err := client.WithTokens(staticToken("abc")).CurrentUser(context.Background())
	require.NoError(t, err)
	_, err = client.WithTokens(staticToken("")).CurrentUser(context.Background())
	require.NoError(t, err)
	_, err = client.WithTokens(nil).ForgotPassword(context.Background(), "a@b.com")
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer abc", "", ""}, got)
}

func TestListProductsTransformsAndDefaultsPaging(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retailer/products/", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "12", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, ok(map[string]any{
			"products": []map[string]any{{
				"id":             42,
				"name":           "Basmati Rice",
				"description":    "5kg bag",
				"image_url":      "/media/products/rice.png",
				"market_price":   "499.50",
				"quantity":       8,
				"average_rating": "4.5",
				"total_reviews":  12,
			}, {
				"id":             "43",
				"name":           "Tea",
				"image_url":      "https://cdn.example.com/tea.png",
				"market_price":   120,
				"average_rating": nil,
			}},
			"total_count": 2,
		}))
	})

	page, err := client.WithTokens(staticToken("t")).ListProducts(context.Background(), domain.PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)
	assert.Equal(t, 2, page.TotalCount)

	assert.Equal(t, domain.Product{
		ID:               "42",
		Title:            "Basmati Rice",
		Price:            499.5,
		Currency:         "₹",
		Image:            "https://media.example.com/media/products/rice.png",
		Stock:            8,
		Rating:           4.5,
		ReviewsCount:     12,
		Description:      "5kg bag",
		AvailableProduct: 8,
	}, page.Products[0])
	assert.Equal(t, "43", page.Products[1].ID)
	assert.Equal(t, 120.0, page.Products[1].Price)
	assert.Equal(t, "https://cdn.example.com/tea.png", page.Products[1].Image)
	assert.Zero(t, page.Products[1].Rating)
}

func TestImageURL(t *testing.T) {
	c := &Client{mediaBase: "http://api.local"}
	assert.Equal(t, "", c.imageURL(""))
	assert.Equal(t, "http://api.local/media/a.png", c.imageURL("media/a.png"))
	assert.Equal(t, "http://api.local/media/a.png", c.imageURL("/media/a.png"))
	assert.Equal(t, "https://x/y.png", c.imageURL("https://x/y.png"))
	assert.Equal(t, "data:image/png;base64,AA", c.imageURL("data:image/png;base64,AA"))
}

// productServer is a fake catalog supporting list and delete.
type productServer struct {
	mu        sync.Mutex
	ids       []string
	listCalls int32
}

func (p *productServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/retailer/products/":
		atomic.AddInt32(&p.listCalls, 1)
		p.mu.Lock()
		products := make([]map[string]any, 0, len(p.ids))
		for _, id := range p.ids {
			products = append(products, map[string]any{"id": id, "name": "p" + id, "market_price": "1"})
		}
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, ok(map[string]any{"products": products, "total_count": len(products)}))
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/retailer/products/"):
		id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/retailer/products/"), "/")
		p.mu.Lock()
		for i, existing := range p.ids {
			if existing == id {
				p.ids = append(p.ids[:i], p.ids[i+1:]...)
				break
			}
		}
		p.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	default:
		http.NotFound(w, r)
	}
}

func TestDeleteProductInvalidatesCachedList(t *testing.T) {
	srv := &productServer{ids: []string{"7", "8"}}
	client := newTestClient(t, srv.handle)
	api := client.WithTokens(staticToken("retailer-token"))
	ctx := context.Background()

	page, err := api.ListProducts(ctx, domain.PageRequest{Page: 1, Limit: 12})
	require.NoError(t, err)
	require.Len(t, page.Products, 2)

	_, err = api.ListProducts(ctx, domain.PageRequest{Page: 1, Limit: 12})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&srv.listCalls))

	require.NoError(t, api.DeleteProduct(ctx, "7"))

	page, err = api.ListProducts(ctx, domain.PageRequest{Page: 1, Limit: 12})
	require.NoError(t, err)
	require.Len(t, page.Products, 1)
	assert.Equal(t, "8", page.Products[0].ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&srv.listCalls))
}

func TestCacheIsPartitionedByToken(t *testing.T) {
	srv := &productServer{ids: []string{"1"}}
	client := newTestClient(t, srv.handle)
	ctx := context.Background()

	_, err := client.WithTokens(staticToken("alice")).ListProducts(ctx, domain.PageRequest{})
	require.NoError(t, err)
	_, err = client.WithTokens(staticToken("bob")).ListProducts(ctx, domain.PageRequest{})
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&srv.listCalls))
}

func TestRejectedCallsCarryStatusAndMessage(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{"message field", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, 401, "Invalid credentials"},
		{"detail field", http.StatusForbidden, `{"detail":"Not allowed"}`, 403, "Not allowed"},
		{"error field", http.StatusBadRequest, `{"error":"Bad otp"}`, 400, "Bad otp"},
		{"no message", http.StatusInternalServerError, `<html>oops</html>`, 500, errorutil.GenericMessage},
		{"success false on 200", http.StatusOK, `{"success":false,"statusCode":409,"message":"Email taken"}`, 409, "Email taken"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			})

			_, err := client.WithTokens(nil).Login(context.Background(), LoginRequest{Email: "a@b.com", Password: "secret1"})
			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.wantStatus, apiErr.StatusCode)
			assert.Equal(t, tc.wantMsg, apiErr.UpstreamMessage())

			de := errorutil.ToDomainError(err)
			assert.Equal(t, tc.wantMsg, de.Message)
		})
	}
}

func TestMalformedSuccessResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"data":null}`)
	})

	_, err := client.WithTokens(nil).Login(context.Background(), LoginRequest{})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrMalformedResponse, apiErr.Code)
	assert.Equal(t, errorutil.GenericMessage, apiErr.UpstreamMessage())

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	})
	_, err = client.WithTokens(nil).Signup(context.Background(), SignupRequest{})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, ErrMalformedResponse, apiErr.Code)
}

func TestTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	client, err := New(Config{BaseURL: server.URL}, nil, nil, nil)
	require.NoError(t, err)
	server.Close()

	_, err = client.WithTokens(nil).Login(context.Background(), LoginRequest{})
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, http.StatusBadGateway, errorutil.ToDomainError(err).HTTPStatus)
}

func TestUpdateProfileSendsOnlySetFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/auth/profile/update/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, []string{"New Name"}, r.MultipartForm.Value["name"])
		_, hasContact := r.MultipartForm.Value["contact_number"]
		assert.False(t, hasContact)

		files := r.MultipartForm.File["image"]
		require.Len(t, files, 1)
		assert.Equal(t, "me.png", files[0].Filename)
		assert.Equal(t, "image/png", files[0].Header.Get("Content-Type"))

		writeJSON(w, http.StatusOK, ok(map[string]any{"id": "u1", "name": "New Name"}))
	})

	name, empty := "New Name", ""
	profile, err := client.WithTokens(staticToken("t")).UpdateProfile(context.Background(), domain.ProfileUpdate{
		Name:          &name,
		ContactNumber: &empty,
		Image:         &domain.Upload{Filename: "me.png", ContentType: "image/png", Body: strings.NewReader("png-bytes")},
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", profile.Name)
}

func TestCreateProductMultipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/retailer/products/create/", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Tea", r.FormValue("name"))
		assert.Equal(t, "Green", r.FormValue("description"))
		assert.Equal(t, "99.00", r.FormValue("market_price"))
		assert.Equal(t, "3", r.FormValue("quantity"))
		assert.Empty(t, r.MultipartForm.File["image"])
		writeJSON(w, http.StatusCreated, ok(map[string]any{"id": 5, "name": "Tea", "market_price": "99.00", "quantity": 3}))
	})

	product, err := client.WithTokens(staticToken("t")).CreateProduct(context.Background(), domain.ProductInput{
		Name: "Tea", Description: "Green", MarketPrice: "99.00", Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "5", product.ID)
	assert.Equal(t, 99.0, product.Price)
}

func TestLoginInvalidatesAuthTag(t *testing.T) {
	var meCalls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/me/":
			atomic.AddInt32(&meCalls, 1)
			writeJSON(w, http.StatusOK, ok(map[string]any{"id": "1", "email": "a@b.com", "name": "A", "account_type": "retailer"}))
		case "/auth/login/":
			writeJSON(w, http.StatusOK, ok(map[string]any{"access": "a", "refresh": "r", "user": map[string]any{"id": "1", "account_type": "retailer"}}))
		}
	})
	api := client.WithTokens(staticToken("t"))
	ctx := context.Background()

	_, err := api.CurrentUser(ctx)
	require.NoError(t, err)
	_, err = api.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&meCalls))

	tokens, err := api.Login(ctx, LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "retailer", tokens.User.AccountType)

	_, err = api.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&meCalls))
}

func TestProfileAcceptsUnwrappedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": "u1", "email": "a@b.com", "name": "Asha", "staff_limit": 3})
	})

	profile, err := client.WithTokens(staticToken("t")).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Asha", profile.Name)
	assert.Equal(t, 3, profile.StaffLimit)
}

func TestProfileSetupSendsDeliveryAreas(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer pending", r.Header.Get("Authorization"))
		var body domain.ProfileSetup
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Dhaka", "Chittagong"}, body.DeliveryAreas)
		writeJSON(w, http.StatusOK, ok(map[string]any{"message": "Profile saved"}))
	})

	msg, err := client.WithTokens(staticToken("pending")).ProfileSetup(context.Background(), domain.ProfileSetup{
		BusinessName:  "Shop",
		DeliveryAreas: []string{"Dhaka", "Chittagong"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Profile saved", msg)
}

func TestResetPasswordNullData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "statusCode": 200, "message": "Password reset", "data": nil})
	})

	msg, err := client.WithTokens(nil).ResetPassword(context.Background(), ResetPasswordRequest{Email: "a@b.com", OTPCode: "1234", NewPassword: "n"})
	require.NoError(t, err)
	assert.Equal(t, "Password reset", msg)
}

func TestCustomCacheIsUsed(t *testing.T) {
	store := cache.NewMemoryStore()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ok(map[string]any{"id": "9", "name": "x"}))
	}))
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL}, cache.New(store, time.Minute), nil, nil)
	require.NoError(t, err)
	_, err = client.WithTokens(staticToken("t")).GetProduct(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestPing(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, client.Ping(context.Background()))

	down, err := New(Config{BaseURL: "http://127.0.0.1:1"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Error(t, down.Ping(context.Background()))
}
