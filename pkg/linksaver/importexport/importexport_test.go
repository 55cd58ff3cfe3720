package importexport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/auth"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/models"
)

var testTokens = auth.NewTokenService("test-secret", time.Hour)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) models.User {
	user := models.User{Email: email, Name: "Test User"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createLink(t *testing.T, db *gorm.DB, userID uint, url string, position int) {
	link := models.Link{
		UserID:   userID,
		URL:      url,
		Title:    url,
		Tags:     []string{},
		Position: position,
	}
	if err := db.Create(&link).Error; err != nil {
		t.Fatalf("Failed to create test link: %v", err)
	}
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	api := r.Group("/api")
	api.Use(auth.Middleware(testTokens))
	handler.RegisterRoutes(api)

	return r
}

func doJSON(router *gin.Engine, user models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	token, _ := testTokens.GenerateToken(user.ID, user.Email)
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: auth.TokenCookieName, Value: token})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestExport(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	createLink(t, db, user.ID, "https://b.example.com", 1)
	createLink(t, db, user.ID, "https://a.example.com", 0)

	resp := doJSON(router, user, "GET", "/api/export", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var bookmarks []Bookmark
	json.Unmarshal(resp.Body.Bytes(), &bookmarks)

	if len(bookmarks) != 2 {
		t.Fatalf("Expected 2 bookmarks, got %d", len(bookmarks))
	}
	// Export follows display order, not creation order.
	if bookmarks[0].URL != "https://a.example.com" {
		t.Errorf("Expected display order in export, got %v", bookmarks)
	}
}

func TestImportAppendsAfterExisting(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	createLink(t, db, user.ID, "https://existing.example.com", 0)

	body := ImportRequest{Bookmarks: []Bookmark{
		{URL: "https://one.example.com", Title: "One", Tags: []string{"imported"}},
		{URL: "https://two.example.com"},
	}}
	resp := doJSON(router, user, "POST", "/api/import", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result ImportResult
	json.Unmarshal(resp.Body.Bytes(), &result)
	if result.Imported != 2 || result.Skipped != 0 {
		t.Errorf("Expected 2 imported, got %+v", result)
	}

	var links []models.Link
	db.Where("user_id = ?", user.ID).Order("position ASC").Find(&links)
	if len(links) != 3 {
		t.Fatalf("Expected 3 links, got %d", len(links))
	}
	for i, link := range links {
		if link.Position != i {
			t.Errorf("Expected dense positions, got %d at index %d", link.Position, i)
		}
	}
	// Title falls back to the URL when the bookmark has none.
	if links[2].Title != "https://two.example.com" {
		t.Errorf("Expected title fallback to URL, got %q", links[2].Title)
	}
}

func TestImportSkipsDuplicatesAndReportsErrors(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	createLink(t, db, user.ID, "https://existing.example.com", 0)

	body := ImportRequest{Bookmarks: []Bookmark{
		{URL: "https://existing.example.com", Title: "Dup"},
		{URL: "not-a-url"},
		{URL: "https://fresh.example.com", Title: "Fresh"},
	}}
	resp := doJSON(router, user, "POST", "/api/import", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result ImportResult
	json.Unmarshal(resp.Body.Bytes(), &result)

	if result.Imported != 1 {
		t.Errorf("Expected 1 imported, got %d", result.Imported)
	}
	if result.Skipped != 1 {
		t.Errorf("Expected 1 skipped, got %d", result.Skipped)
	}
	if len(result.Errors) != 1 {
		t.Errorf("Expected 1 error, got %v", result.Errors)
	}
}

func TestImportMalformedBody(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "test@example.com")

	resp := doJSON(router, user, "POST", "/api/import", map[string]interface{}{"bookmarks": "nope"})
	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.Code)
	}
}

func TestExportUnauthenticated(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/api/export", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", resp.Code)
	}
}
