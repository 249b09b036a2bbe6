package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/skalyan/tabdash/config"
	"github.com/skalyan/tabdash/internal/analysis"
	"github.com/skalyan/tabdash/internal/charts"
	"github.com/skalyan/tabdash/internal/dataset"
	"github.com/skalyan/tabdash/internal/export"
	"github.com/skalyan/tabdash/internal/security"
	"github.com/skalyan/tabdash/internal/sessions"
	"github.com/skalyan/tabdash/pkg/apperr"
	"github.com/skalyan/tabdash/pkg/pagination"
	"github.com/skalyan/tabdash/pkg/validation"
	"github.com/skalyan/tabdash/pkg/version"
)

type filterOption struct {
	Value   string
	Checked bool
}

type filterColumn struct {
	Name    string
	Options []filterOption
}

type dateColumn struct {
	Name     string
	From, To string
}

type dashboardData struct {
	Filename     string
	Banner       string
	TotalRows    int
	FilteredRows int

	Columns       []dataset.Column
	FilterColumns []filterColumn
	DateColumns   []dateColumn

	Metric  string
	Group   string
	KPI     analysis.KPIResult
	TopRows []analysis.TopNRow

	ChartURL     template.URL
	ControlQuery template.URL

	PreviewRows [][]string
	NextCursor  string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.renderUpload(w, http.StatusOK, r.URL.Query().Get("err"))
}

func (s *Server) renderUpload(w http.ResponseWriter, status int, banner string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplates.ExecuteTemplate(w, "upload", struct{ Banner string }{banner}); err != nil {
		s.log.Error().Err(err).Msg("render upload page")
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.limits.MaxUploadBytes+1)
	if err := r.ParseMultipartForm(s.limits.MaxUploadBytes); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			s.uploadError(w, apperr.Wrapf(apperr.UploadTooLarge, "upload exceeds %d bytes", s.limits.MaxUploadBytes))
			return
		}
		s.uploadError(w, apperr.Wrapf(apperr.Validation, "malformed upload form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.uploadError(w, apperr.New(apperr.Validation, "no file in upload form"))
		return
	}
	defer file.Close()

	in := struct {
		Filename string `validate:"required,upload_ext"`
	}{Filename: header.Filename}
	if msg := validation.ValidateStruct(in); msg != "" {
		s.uploadError(w, apperr.New(apperr.UnsupportedFormat, msg))
		return
	}

	format, err := s.guard.ValidateUpload(header.Filename, header.Size)
	if err != nil {
		s.uploadError(w, uploadGuardError(err))
		return
	}
	raw, err := io.ReadAll(io.LimitReader(file, s.limits.MaxUploadBytes+1))
	if err != nil {
		s.uploadError(w, apperr.Wrapf(apperr.ParseFailed, "read upload: %v", err))
		return
	}
	if int64(len(raw)) > s.limits.MaxUploadBytes {
		s.uploadError(w, apperr.Wrapf(apperr.UploadTooLarge, "upload exceeds %d bytes", s.limits.MaxUploadBytes))
		return
	}
	if err := s.guard.SniffContent(format, raw); err != nil {
		s.uploadError(w, uploadGuardError(err))
		return
	}

	ds, err := dataset.Decode(header.Filename, bytes.NewReader(raw), dataset.Options{
		MaxFilterOptions: s.limits.MaxFilterOptions,
	})
	if err != nil {
		s.uploadError(w, err)
		return
	}

	// Re-upload in an existing session replaces its dataset in place.
	if sess, ok := s.currentSession(r); ok {
		if err := s.sessions.Replace(sess.ID, ds, header.Filename); err == nil {
			s.hooks.OnSessionCreate(sess.ID, header.Filename, ds.NumRows(), ds.NumCols())
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
			return
		}
	}

	id, err := s.sessions.Create(r.Context(), ds, header.Filename)
	if err != nil {
		s.uploadError(w, apperr.Wrapf(apperr.BusyResource, "session capacity reached: %v", err))
		return
	}
	s.hooks.OnSessionCreate(id, header.Filename, ds.NumRows(), ds.NumCols())

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) uploadError(w http.ResponseWriter, err error) {
	s.log.Warn().Err(err).Msg("upload rejected")
	s.renderUpload(w, apperr.Status(err), apperr.UserMessage(err))
}

// uploadGuardError maps upload guard failures onto canonical error codes.
func uploadGuardError(err error) error {
	switch {
	case errors.Is(err, security.ErrUnsupportedExtension):
		return apperr.Wrapf(apperr.UnsupportedFormat, "%v", err)
	case errors.Is(err, security.ErrUploadTooLarge):
		return apperr.Wrapf(apperr.UploadTooLarge, "%v", err)
	case errors.Is(err, security.ErrContentMismatch):
		return apperr.Wrapf(apperr.ParseFailed, "%v", err)
	}
	return apperr.Wrapf(apperr.Internal, "%v", err)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	var ds *dataset.Dataset
	var fs dataset.FilterState
	err := s.sessions.WithRead(sess.ID, func(d *dataset.Dataset, f dataset.FilterState) error {
		ds, fs = d, f
		return nil
	})
	if err != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	view, err := dataset.Apply(ds, fs)
	if err != nil {
		s.writeError(w, err)
		return
	}

	q := r.URL.Query()
	data := dashboardData{
		Filename:     sess.Name(),
		TotalRows:    ds.NumRows(),
		FilteredRows: view.NumRows(),
		Columns:      ds.Columns,
	}

	metric := q.Get("metric")
	if metric == "" {
		if nums := ds.ColumnsOfType(dataset.TypeNumeric); len(nums) > 0 {
			metric = nums[0].Name
		}
	}
	group := q.Get("group")
	if group == "" {
		if cats := ds.ColumnsOfType(dataset.TypeCategorical); len(cats) > 0 {
			group = cats[0].Name
		}
	}
	data.Metric, data.Group = metric, group

	if metric != "" {
		kpi, err := analysis.KPIs(view, metric)
		if err != nil {
			s.writeError(w, err)
			return
		}
		data.KPI = kpi
	} else {
		data.Banner = "no numeric columns detected; KPIs unavailable"
		data.Metric = "-"
	}

	topn := s.limits.TopN
	if raw := q.Get("topn"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > config.MaxTopN {
			s.writeError(w, apperr.Wrapf(apperr.Validation, "topn must be in (0, %d]", config.MaxTopN))
			return
		}
		topn = n
	}
	if metric != "" && group != "" {
		rows, err := analysis.TopN(view, group, metric, topn)
		if err != nil {
			s.writeError(w, err)
			return
		}
		data.TopRows = rows
	}

	data.FilterColumns, data.DateColumns = filterControls(ds, fs)
	data.ChartURL = s.chartURL(ds, q, metric, group)
	data.ControlQuery = controlQuery(q)

	// Preview pagination; a cursor from a stale filter state resets to page one.
	offset := 0
	fh := fs.Fingerprint()
	if token := q.Get("cursor"); token != "" {
		c, err := pagination.DecodeCursor(token)
		switch {
		case err != nil:
			s.writeError(w, apperr.Wrapf(apperr.CursorInvalid, "%v", err))
			return
		case c.Sid != sess.ID:
			s.writeError(w, apperr.New(apperr.CursorInvalid, "cursor belongs to a different session"))
			return
		case c.Fh != fh:
			data.Banner = "filters changed since this page was issued; showing the first page"
		default:
			offset = c.Off
		}
	}

	pageSize := s.limits.PreviewPageSize
	end := offset + pageSize
	if end > view.NumRows() {
		end = view.NumRows()
	}
	if offset > view.NumRows() {
		offset = view.NumRows()
	}
	for i := offset; i < end; i++ {
		data.PreviewRows = append(data.PreviewRows, view.Row(i))
	}
	if end < view.NumRows() {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			Sid: sess.ID,
			Fh:  fh,
			Off: pagination.NextOffset(offset, end-offset),
			Ps:  pageSize,
		})
		if err == nil {
			data.NextCursor = token
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, "dashboard", data); err != nil {
		s.log.Error().Err(err).Msg("render dashboard page")
	}
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.writeError(w, apperr.Wrapf(apperr.Validation, "parse form: %v", err))
		return
	}

	var fs dataset.FilterState
	err := s.sessions.WithRead(sess.ID, func(ds *dataset.Dataset, _ dataset.FilterState) error {
		var perr error
		fs, perr = dataset.ParseForm(r.PostForm, ds)
		return perr
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.sessions.SetFilters(sess.ID, fs); err != nil {
		s.writeError(w, apperr.New(apperr.SessionNotFound, err.Error()))
		return
	}

	dest := "/dashboard"
	if rq := r.URL.RawQuery; rq != "" {
		dest += "?" + rq
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// chartRequest binds and validates the chart endpoint parameters.
type chartRequest struct {
	Kind string `validate:"required,chart_type"`
	X    string `validate:"required,colname"`
	Y    string `validate:"required,colname"`
	Hue  string `validate:"colname"`
}

func (s *Server) chartSpec(r *http.Request) (charts.Spec, error) {
	q := r.URL.Query()
	req := chartRequest{
		Kind: q.Get("kind"),
		X:    q.Get("x"),
		Y:    q.Get("y"),
		Hue:  q.Get("hue"),
	}
	if msg := validation.ValidateStruct(req); msg != "" {
		return charts.Spec{}, apperr.New(apperr.Validation, msg)
	}
	return charts.Spec{
		Kind:       charts.Kind(req.Kind),
		X:          req.X,
		Y:          req.Y,
		Hue:        req.Hue,
		SampleSize: s.limits.ScatterSampleSize,
	}, nil
}

func (s *Server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	spec, err := s.chartSpec(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.filteredView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderHTML(&buf, view, spec); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	spec, err := s.chartSpec(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	view, err := s.filteredView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := charts.RenderPNG(&buf, view, spec); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	view, err := s.filteredView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_data.csv"`)
	if err := export.WriteCSV(view, w); err != nil {
		s.log.Error().Err(err).Msg("export csv")
	}
}

func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	view, err := s.filteredView(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="filtered_data.xlsx"`)
	if err := export.WriteExcel(view, w); err != nil {
		s.log.Error().Err(err).Msg("export xlsx")
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"version":  version.Version(),
		"sessions": s.sessions.Count(),
	})
}

// currentSession resolves the cookie-bound session when it exists.
func (s *Server) currentSession(r *http.Request) (*sessions.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.sessions.Get(c.Value)
}

// filteredView loads the request's session and applies its stored filters.
func (s *Server) filteredView(r *http.Request) (*dataset.View, error) {
	sess, ok := s.currentSession(r)
	if !ok {
		return nil, apperr.New(apperr.SessionNotFound, "no active session; upload a file first")
	}
	var view *dataset.View
	err := s.sessions.WithRead(sess.ID, func(ds *dataset.Dataset, fs dataset.FilterState) error {
		v, aerr := dataset.Apply(ds, fs)
		if aerr != nil {
			return aerr
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.log.Warn().Err(err).Msg("request failed")
	http.Error(w, apperr.UserMessage(err), apperr.Status(err))
}

// filterControls builds the sidebar widgets: one checkbox group per
// filterable categorical column and one range picker per date column.
func filterControls(ds *dataset.Dataset, fs dataset.FilterState) ([]filterColumn, []dateColumn) {
	var fcols []filterColumn
	for _, col := range ds.ColumnsOfType(dataset.TypeCategorical) {
		if !col.Filterable {
			continue
		}
		fc := filterColumn{Name: col.Name}
		selected := fs[col.Name].Values
		for _, opt := range col.Options {
			_, checked := selected[opt]
			fc.Options = append(fc.Options, filterOption{Value: opt, Checked: checked})
		}
		fcols = append(fcols, fc)
	}

	var dcols []dateColumn
	for _, col := range ds.ColumnsOfType(dataset.TypeDate) {
		dc := dateColumn{Name: col.Name}
		if p, ok := fs[col.Name]; ok {
			if p.From != nil {
				dc.From = p.From.Format("2006-01-02")
			}
			if p.To != nil {
				dc.To = p.To.Format("2006-01-02")
			}
		}
		dcols = append(dcols, dc)
	}
	return fcols, dcols
}

// chartURL composes the embedded chart endpoint URL from the dashboard's
// current selections, or empty when the dataset lacks the needed columns.
func (s *Server) chartURL(ds *dataset.Dataset, q url.Values, metric, group string) template.URL {
	kind := q.Get("chart")
	if kind == "" {
		kind = string(charts.KindLine)
	}
	if metric == "" {
		return ""
	}

	v := url.Values{}
	v.Set("kind", kind)
	v.Set("y", metric)
	switch charts.Kind(kind) {
	case charts.KindLine:
		dates := ds.ColumnsOfType(dataset.TypeDate)
		if len(dates) == 0 {
			return ""
		}
		v.Set("x", dates[0].Name)
	case charts.KindScatter:
		x := q.Get("x")
		if x == "" {
			for _, c := range ds.ColumnsOfType(dataset.TypeNumeric) {
				if c.Name != metric {
					x = c.Name
					break
				}
			}
		}
		if x == "" {
			x = metric
		}
		v.Set("x", x)
		if group != "" {
			v.Set("hue", group)
		}
	case charts.KindBar:
		if group == "" {
			return ""
		}
		v.Set("x", group)
	default:
		return ""
	}
	return template.URL("/charts/view?" + v.Encode())
}

// controlQuery preserves the non-filter dashboard controls across the filter
// form roundtrip.
func controlQuery(q url.Values) template.URL {
	keep := url.Values{}
	for _, key := range []string{"metric", "group", "chart", "topn", "x"} {
		if val := q.Get(key); val != "" {
			keep.Set(key, val)
		}
	}
	if len(keep) == 0 {
		return ""
	}
	return template.URL("?" + keep.Encode())
}
