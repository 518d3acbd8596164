package server

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/dataset"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const dayCSV = `instant,dteday,season,weekday,workingday,temp,atemp,hum,windspeed,casual,registered,cnt
1,2011-01-01,1,6,0,0.34,0.36,0.80,0.16,331,654,985
2,2011-01-03,1,1,1,0.19,0.18,0.43,0.24,120,1229,1349
3,2011-04-02,2,6,0,0.38,0.39,0.62,0.27,1005,2290,3295
4,2011-04-04,2,1,1,0.47,0.46,0.50,0.21,580,3210,3790
5,2011-07-02,3,6,0,0.72,0.67,0.58,0.12,2204,3231,5435
6,2011-07-04,3,1,1,0.78,0.72,0.60,0.15,1200,4400,5600
7,2011-10-01,4,6,0,0.40,0.41,0.70,0.20,900,2600,3500
8,2011-10-03,4,1,1,0.45,0.44,0.66,0.18,700,3900,4600
`

const hourCSV = `instant,dteday,season,weekday,workingday,hr,temp,atemp,hum,windspeed,casual,registered,cnt
1,2011-01-01,1,6,0,0,0.24,0.28,0.81,0.0,3,13,16
2,2011-01-01,1,6,0,1,0.22,0.27,0.80,0.0,8,32,40
3,2011-01-03,1,1,1,0,0.20,0.25,0.44,0.1,0,5,5
4,2011-04-02,2,6,0,8,0.40,0.41,0.60,0.2,20,80,100
5,2011-07-04,3,1,1,17,0.80,0.74,0.55,0.1,60,500,560
6,2011-10-03,4,1,1,8,0.46,0.45,0.66,0.2,15,300,315
`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fs := afero.NewMemMapFs()
	dir := "/data"
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "day.csv"), []byte(dayCSV), 0o644))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "hour.csv"), []byte(hourCSV), 0o644))

	raw, err := dataset.NewLoader(fs, dataset.DefaultLoaderOptions()).Load([]string{dir})
	require.NoError(t, err)
	tables, err := dataset.Prepare(raw)
	require.NoError(t, err)

	ts := httptest.NewServer(New(tables, Options{}).Routes())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func getJSON(t *testing.T, c *http.Client, url string, out any) int {
	t.Helper()
	resp, err := c.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type viewBody struct {
	Selection  analysis.Selection `json:"selection"`
	DailyRows  int                `json:"daily_rows"`
	HourlyRows int                `json:"hourly_rows"`
	Warning    *struct {
		Message string `json:"message"`
	} `json:"warning"`
	KPIs *struct {
		Total   float64 `json:"total"`
		Records int     `json:"records"`
	} `json:"kpis"`
	Seasonal []struct {
		Season string  `json:"season"`
		Mean   float64 `json:"mean"`
	} `json:"seasonal"`
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	var body map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, newClient(t), ts.URL+"/healthz", &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 8, body["daily_rows"])
}

func TestViewDefaultSelection(t *testing.T) {
	ts := newTestServer(t)
	var vm viewBody
	require.Equal(t, http.StatusOK, getJSON(t, newClient(t), ts.URL+"/api/view", &vm))
	assert.Nil(t, vm.Warning)
	require.NotNil(t, vm.KPIs)
	assert.Equal(t, 8, vm.KPIs.Records)
	assert.InDelta(t, 28554, vm.KPIs.Total, 1e-9)
	require.Len(t, vm.Seasonal, 4)
	assert.Equal(t, "Fall", vm.Seasonal[0].Season)
}

func TestViewQueryUpdatesSessionOnly(t *testing.T) {
	ts := newTestServer(t)
	alice := newClient(t)

	var vm viewBody
	require.Equal(t, http.StatusOK, getJSON(t, alice, ts.URL+"/api/view?season=Spring&season=Summer", &vm))
	require.NotNil(t, vm.KPIs)
	assert.Equal(t, 4, vm.KPIs.Records)

	var sel analysis.Selection
	require.Equal(t, http.StatusOK, getJSON(t, alice, ts.URL+"/api/selection", &sel))
	assert.Equal(t, []string{"Spring", "Summer"}, sel.SeasonNames())

	// Changing only the mode keeps the session's seasons.
	require.Equal(t, http.StatusOK, getJSON(t, alice, ts.URL+"/api/view?workingday=working", &vm))
	assert.Equal(t, 2, vm.DailyRows)

	var other analysis.Selection
	require.Equal(t, http.StatusOK, getJSON(t, newClient(t), ts.URL+"/api/selection", &other))
	assert.Len(t, other.Seasons, 4)
	assert.Equal(t, analysis.AllDays, other.WorkingDay)
}

func TestViewEmptySeasonSelectionWarns(t *testing.T) {
	ts := newTestServer(t)
	var vm viewBody
	require.Equal(t, http.StatusOK, getJSON(t, newClient(t), ts.URL+"/api/view?season=", &vm))
	require.NotNil(t, vm.Warning)
	assert.Contains(t, vm.Warning.Message, "empty dataset")
	assert.Nil(t, vm.KPIs)
	assert.Equal(t, 0, vm.DailyRows)
}

func TestViewInvalidSelection(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	var p problem
	require.Equal(t, http.StatusBadRequest, getJSON(t, c, ts.URL+"/api/view?season=Monsoon", &p))
	assert.Equal(t, http.StatusBadRequest, p.Status)
	assert.Contains(t, p.Detail, "Monsoon")

	require.Equal(t, http.StatusBadRequest, getJSON(t, c, ts.URL+"/api/view?workingday=sometimes", &p))

	// A rejected request leaves the selection untouched.
	var sel analysis.Selection
	require.Equal(t, http.StatusOK, getJSON(t, c, ts.URL+"/api/selection", &sel))
	assert.Len(t, sel.Seasons, 4)
}

func TestPutSelectionAndExportCSV(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)

	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/selection",
		strings.NewReader(`{"seasons":["Fall","Fall"],"working_day":"working"}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	var sel analysis.Selection
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sel))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Fall"}, sel.SeasonNames())

	resp, err = c.Get(ts.URL + "/api/export/daily/csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "daily_filtered.csv")
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/csv"))

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Contains(t, records[0], "season_name")
	assert.Contains(t, records[1], "5600")
}

func TestPutSelectionRejectsUnknownSeason(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodPut, ts.URL+"/api/selection", strings.NewReader(`{"seasons":["Monsoon"]}`))
	require.NoError(t, err)
	resp, err := newClient(t).Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportAllAsWorkbook(t *testing.T) {
	ts := newTestServer(t)
	resp, err := newClient(t).Get(ts.URL + "/api/export/all/xlsx?season=Winter")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	wb, err := excelize.OpenReader(strings.NewReader(string(b)))
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{"daily", "hourly"}, wb.GetSheetList())

	rows, err := wb.GetRows("daily")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestExportRejectsBadRequests(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	for _, path := range []string{
		"/api/export/weekly/csv",
		"/api/export/daily/pdf",
		"/api/export/all/csv",
	} {
		resp, err := c.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, path)
	}
}

func TestMetricsExposed(t *testing.T) {
	ts := newTestServer(t)
	c := newClient(t)
	getJSON(t, c, ts.URL+"/api/view", nil)

	resp, err := c.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), `bikeshare_renders_total{outcome="ok"} 1`)
	assert.Contains(t, string(b), "bikeshare_sessions 1")
}

func TestSessionStoreCopies(t *testing.T) {
	st := NewSessionStore(analysis.DefaultSelection(), 0, 0)
	s := st.Create()
	s.Selection.Seasons[0] = dataset.Winter

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Equal(t, dataset.Spring, got.Selection.Seasons[0])
	assert.Equal(t, 1, st.Len())

	_, ok = st.SetSelection("missing", analysis.DefaultSelection())
	assert.False(t, ok)
}

func TestSessionStoreEvictsLeastRecentlyUsed(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := NewSessionStore(analysis.DefaultSelection(), time.Hour, 3)
	st.now = func() time.Time { return now }

	var ids []string
	for i := 0; i < 3; i++ {
		ids = append(ids, st.Create().ID)
		now = now.Add(time.Second)
	}
	// Using the first session makes the second the oldest.
	_, ok := st.Get(ids[0])
	require.True(t, ok)
	now = now.Add(time.Second)

	st.Create()
	assert.Equal(t, 3, st.Len())
	_, ok = st.Get(ids[1])
	assert.False(t, ok)
	_, ok = st.Get(ids[0])
	assert.True(t, ok)
}

func TestSessionStoreExpiresIdleSessions(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var gauge int
	st := NewSessionStore(analysis.DefaultSelection(), 10*time.Minute, 0)
	st.now = func() time.Time { return now }
	st.onChange = func(n int) { gauge = n }

	idle := st.Create().ID
	active := st.Create().ID
	now = now.Add(6 * time.Minute)
	_, ok := st.SetSelection(active, analysis.DefaultSelection())
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	_, ok = st.Get(idle)
	assert.False(t, ok)
	assert.Equal(t, 1, gauge)
	_, ok = st.Get(active)
	assert.True(t, ok)

	now = now.Add(11 * time.Minute)
	st.Create()
	assert.Equal(t, 1, st.Len())
	assert.Equal(t, 1, gauge)
}

func TestCookielessRequestsAreBounded(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/data", 0o755))
	require.NoError(t, afero.WriteFile(fs, "/data/day.csv", []byte(dayCSV), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/data/hour.csv", []byte(hourCSV), 0o644))
	raw, err := dataset.NewLoader(fs, dataset.DefaultLoaderOptions()).Load([]string{"/data"})
	require.NoError(t, err)
	tables, err := dataset.Prepare(raw)
	require.NoError(t, err)

	srv := New(tables, Options{MaxSessions: 50})
	h := srv.Routes()
	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/selection", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 50, srv.Sessions().Len())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "bikeshare_sessions 50")
}
