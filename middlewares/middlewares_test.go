package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/inventory_backend/models"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestSessionMiddleware_RequiresBusinessId(t *testing.T) {
	r := gin.New()
	r.Use(SessionMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionMiddleware_PopulatesContext(t *testing.T) {
	var (
		businessId, userName, correlationId string
		userId                              int
	)
	r := gin.New()
	r.Use(SessionMiddleware())
	r.GET("/", func(c *gin.Context) {
		ctx := c.Request.Context()
		businessId, _ = utils.GetBusinessIdFromContext(ctx)
		userId, _ = utils.GetUserIdFromContext(ctx)
		userName, _ = utils.GetUserNameFromContext(ctx)
		correlationId, _ = utils.GetCorrelationIdFromContext(ctx)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderBusinessId, "biz-1")
	req.Header.Set(HeaderUserId, "7")
	req.Header.Set(HeaderUserName, "mya")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "biz-1", businessId)
	assert.Equal(t, 7, userId)
	assert.Equal(t, "mya", userName)
	assert.NotEmpty(t, correlationId)
	assert.Equal(t, correlationId, w.Header().Get(HeaderCorrelationId))
}

func TestSessionMiddleware_KeepsIncomingCorrelationId(t *testing.T) {
	r := gin.New()
	r.Use(SessionMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderBusinessId, "biz-1")
	req.Header.Set(HeaderCorrelationId, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderCorrelationId))
}

func TestSessionMiddleware_RejectsBadUserId(t *testing.T) {
	r := gin.New()
	r.Use(SessionMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderBusinessId, "biz-1")
	req.Header.Set(HeaderUserId, "seven")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type recordingFetch struct {
	mu       sync.Mutex
	calls    [][]int
	products map[int]*models.Product
	err      error
}

func (f *recordingFetch) fetch(_ context.Context, ids []int) ([]*models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]int(nil), ids...))
	if f.err != nil {
		return nil, f.err
	}
	var out []*models.Product
	for _, id := range ids {
		if p, ok := f.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestProductLoader_ResultsFollowRequestOrder(t *testing.T) {
	f := &recordingFetch{products: map[int]*models.Product{
		1: {ID: 1, Name: "Shirt"},
		2: {ID: 2, Name: "Trousers"},
	}}
	ctx := WithLoaders(context.Background(), newLoaders(f.fetch))

	products, errs := For(ctx).productLoader.LoadMany(ctx, []int{2, 3, 1})()

	require.Len(t, products, 3)
	assert.Equal(t, "Trousers", products[0].Name)
	assert.Equal(t, "Shirt", products[2].Name)
	require.Len(t, errs, 3)
	assert.NoError(t, errs[0])
	assert.ErrorIs(t, errs[1], utils.ErrorRecordNotFound)
	assert.NoError(t, errs[2])
}

func TestProductLoader_ConcurrentLoadsShareResults(t *testing.T) {
	f := &recordingFetch{products: map[int]*models.Product{
		1: {ID: 1, Name: "Shirt"},
		2: {ID: 2, Name: "Trousers"},
		3: {ID: 3, Name: "Scarf"},
	}}
	ctx := WithLoaders(context.Background(), newLoaders(f.fetch))

	var wg sync.WaitGroup
	names := make([]string, 3)
	for i := range names {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := GetProduct(ctx, i+1)
			if err == nil {
				names[i] = p.Name
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, []string{"Shirt", "Trousers", "Scarf"}, names)
	seen := 0
	for _, call := range f.calls {
		seen += len(call)
	}
	assert.Equal(t, 3, seen)
}

func TestProductLoader_FetchErrorReachesEveryKey(t *testing.T) {
	boom := errors.New("db down")
	f := &recordingFetch{err: boom}
	ctx := WithLoaders(context.Background(), newLoaders(f.fetch))

	_, errs := For(ctx).productLoader.LoadMany(ctx, []int{1, 2})()

	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, boom)
	}
}

func TestGetProduct_FallsBackWithoutLoaders(t *testing.T) {
	orig := fetchProduct
	t.Cleanup(func() { fetchProduct = orig })
	var asked []int
	fetchProduct = func(_ context.Context, id int) (*models.Product, error) {
		asked = append(asked, id)
		return &models.Product{ID: id, Name: "Shirt"}, nil
	}

	p, err := GetProduct(context.Background(), 4)

	require.NoError(t, err)
	assert.Equal(t, "Shirt", p.Name)
	assert.Equal(t, []int{4}, asked)
}

func TestGetProduct_PrefersRequestLoaders(t *testing.T) {
	orig := fetchProduct
	t.Cleanup(func() { fetchProduct = orig })
	fetchProduct = func(context.Context, int) (*models.Product, error) {
		t.Fatal("single read used while loaders are present")
		return nil, nil
	}
	f := &recordingFetch{products: map[int]*models.Product{1: {ID: 1, Name: "Shirt"}}}
	ctx := WithLoaders(context.Background(), newLoaders(f.fetch))

	p, err := GetProduct(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, "Shirt", p.Name)
	assert.Len(t, f.calls, 1)
}
