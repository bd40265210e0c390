package errorlog

import (
	"net/http"
	"testing"

	"github.com/live627/elkarte.net/internal/config"
	"github.com/live627/elkarte.net/internal/request"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// catchAbort runs fn and returns the abort it raised.
func catchAbort(t *testing.T, fn func()) (abort *Abort, returned bool) {
	t.Helper()
	defer func() {
		if v := recover(); v != nil {
			a, ok := v.(*Abort)
			require.True(t, ok, "unexpected panic %v", v)
			abort = a
		}
	}()
	fn()
	return nil, true
}

func TestFatalNeverReturns(t *testing.T) {
	cfg := testConfig()
	r, db := setupReporter(t, cfg)
	rc, w := newContext(cfg, http.MethodGet, "/index.php?action=x", nil)

	reached := false
	abort, returned := catchAbort(t, func() {
		r.Fatal(rc, "Something <b>broke</b>", CategoryCritical)
		reached = true
	})
	assert.False(t, returned)
	assert.False(t, reached)
	require.NotNil(t, abort)
	assert.True(t, abort.Rendered)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Something <strong>broke</strong>")
	assert.Contains(t, w.Body.String(), `<meta name="robots" content="noindex" />`)
	assert.Equal(t, int64(1), countRecords(t, db))
}

func TestFatalWithoutCategoryIsNotLogged(t *testing.T) {
	cfg := testConfig()
	r, db := setupReporter(t, cfg)
	rc, _ := newContext(cfg, http.MethodGet, "/index.php", nil)

	catchAbort(t, func() { r.Fatal(rc, "quiet", "") })
	assert.Zero(t, countRecords(t, db))

	cfg.ErrorLogging = config.ErrorLoggingAll
	rc, _ = newContext(cfg, http.MethodGet, "/index.php", nil)
	catchAbort(t, func() { r.Fatal(rc, "loud", "") })
	assert.Equal(t, int64(1), countRecords(t, db))
}

func TestFatalLangLogsInDefaultLanguage(t *testing.T) {
	cfg := testConfig()
	r, db := setupReporter(t, cfg)
	rc, w := newContext(cfg, http.MethodGet, "/index.php?action=mergetopics", nil)
	rc.Language = "german"

	abort, _ := catchAbort(t, func() { r.FatalLang(rc, "no_board", CategoryGeneral) })
	require.NotNil(t, abort)
	assert.Equal(t, "no_board", abort.Code)
	assert.Equal(t, http.StatusNotFound, abort.Status)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var rec Record
	require.NoError(t, db.First(&rec).Error)
	assert.Equal(t, "The board you specified doesn't exist", rec.Message)

	assert.NotEqual(t, rec.Message, rc.Page.ErrorMessage)
	assert.Contains(t, w.Body.String(), `id="no_board"`)
}

func TestFatalLangStatusAndLogging(t *testing.T) {
	cfg := testConfig()
	r, db := setupReporter(t, cfg)

	rc, w := newContext(cfg, http.MethodGet, "/index.php", nil)
	catchAbort(t, func() { r.FatalLang(rc, "no_access", "") })
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, countRecords(t, db))

	rc, w = newContext(cfg, http.MethodGet, "/index.php", nil)
	catchAbort(t, func() { r.FatalLang(rc, "cannot_merge_any", CategoryUser) })
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, int64(1), countRecords(t, db))

	assert.Equal(t, http.StatusBadRequest, StatusFor("merge_need_more_topics"))
	assert.Equal(t, http.StatusInternalServerError, StatusFor("anything_else"))
}

func TestSetupFatalErrorContextRefusesReentry(t *testing.T) {
	cfg := testConfig()
	r, _ := setupReporter(t, cfg)
	rc, w := newContext(cfg, http.MethodGet, "/index.php", nil)
	rc.FatalDepth = 1

	abort, _ := catchAbort(t, func() { r.SetupFatalErrorContext(rc, "again", "") })
	require.NotNil(t, abort)
	assert.False(t, abort.Rendered)
	assert.Empty(t, w.Body.String())
}

func TestSetupFatalErrorContextKeepsPresetTitle(t *testing.T) {
	cfg := testConfig()
	r, _ := setupReporter(t, cfg)
	rc, _ := newContext(cfg, http.MethodGet, "/index.php", nil)
	rc.Page.ErrorTitle = "Custom"

	catchAbort(t, func() { r.SetupFatalErrorContext(rc, "msg", "c1") })
	assert.True(t, rc.Page.RobotNoIndex)
	assert.Equal(t, "Custom", rc.Page.ErrorTitle)
	assert.Equal(t, "Custom", rc.Page.Title)
	assert.Equal(t, "c1", rc.Page.ErrorCode)
	assert.Equal(t, []string{"Errors"}, rc.Page.Templates)
	assert.Equal(t, "fatal_error", rc.Page.SubTemplate)
}

func TestSetupFatalErrorContextSSI(t *testing.T) {
	cfg := testConfig()
	r, _ := setupReporter(t, cfg)

	rc, w := newContext(cfg, http.MethodGet, "/index.php", nil)
	rc.SSI = true
	called := false
	rc.OnError = func(*request.Context) { called = true }
	catchAbort(t, func() { r.SetupFatalErrorContext(rc, "msg", "") })
	assert.True(t, called)
	assert.Empty(t, w.Body.String())

	rc, w = newContext(cfg, http.MethodGet, "/index.php", nil)
	rc.SSI = true
	catchAbort(t, func() { r.SetupFatalErrorContext(rc, "embedded", "") })
	assert.Contains(t, w.Body.String(), "embedded")
	assert.NotContains(t, w.Body.String(), "<html")
}

func TestHandleError(t *testing.T) {
	cfg := testConfig()
	r, db := setupReporter(t, cfg)

	var seen []string
	r.OnOutputError(func(_ *request.Context, message, category string, _ Level, _ string, _ int) {
		seen = append(seen, category)
	})

	rc, _ := newContext(cfg, http.MethodGet, "/index.php", nil)

	_, returned := catchAbort(t, func() { r.HandleError(rc, LevelNotice, "Undefined index: foo", "a.go", 3) })
	assert.True(t, returned)

	_, returned = catchAbort(t, func() { r.HandleError(rc, LevelStrict, "strict thing", "a.go", 4) })
	assert.True(t, returned)

	_, returned = catchAbort(t, func() { r.HandleError(rc, LevelError, "bad", "Unknown", 0) })
	assert.True(t, returned)

	assert.Equal(t, []string{CategoryUndefinedVars, CategoryGeneral}, seen)
	assert.Equal(t, int64(2), countRecords(t, db))

	var rec Record
	require.NoError(t, db.Order("id").First(&rec).Error)
	assert.Equal(t, "Notice: Undefined index: foo", rec.Message)
}

func TestHandleErrorFatalShowsLoggedMessageToAdmins(t *testing.T) {
	cfg := testConfig()
	r, _ := setupReporter(t, cfg)

	rc, _ := newContext(cfg, http.MethodGet, "/index.php", nil)
	abort, returned := catchAbort(t, func() { r.HandleError(rc, LevelError, "nil <map>", "b.go", 7) })
	assert.False(t, returned)
	assert.Equal(t, "nil <map>", abort.Message)

	rc, _ = newContext(cfg, http.MethodGet, "/index.php", nil)
	rc.Member.IsAdmin = true
	abort, _ = catchAbort(t, func() { r.HandleError(rc, LevelError, "nil <map> again", "b.go", 7) })
	assert.Equal(t, "Error: nil &lt;map&gt; again", abort.Message)
}
