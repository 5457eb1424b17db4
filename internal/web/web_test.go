package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRegister_ServesIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	Register(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/html") {
		t.Errorf("unexpected content type %s", w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "BattleScape") {
		t.Error("expected page title in body")
	}
}

func TestIndex_GuardsPopupLinks(t *testing.T) {
	page := string(indexHTML)
	if !strings.Contains(page, "safeURL(p.wiki_url)") {
		t.Error("expected popup link to pass through the scheme check")
	}
	if strings.Contains(page, "href=\"${esc(p.wiki_url)}\"") {
		t.Error("popup link must not be rendered from the raw field")
	}
}
