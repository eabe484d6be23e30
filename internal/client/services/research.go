package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/lawdesk/internal/client/client"
	"github.com/dmitrijs2005/lawdesk/internal/client/models"
	"github.com/dmitrijs2005/lawdesk/internal/client/query"
	"github.com/dmitrijs2005/lawdesk/internal/client/repositories/results"
	"github.com/dmitrijs2005/lawdesk/internal/filex"
	"github.com/dmitrijs2005/lawdesk/internal/logging"
)

const reportKeyPrefix = "report:"

// ReportUploader publishes an exported report and returns a link to it.
// *storage.S3Store implements it.
type ReportUploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// ExportResult tells where an exported report ended up. URL is empty when
// no uploader is configured.
type ExportResult struct {
	Path string
	URL  string
}

// ResearchService submits structured research forms and keeps the answers.
type ResearchService interface {
	SubmitLegal(ctx context.Context, form models.LegalResearchForm) (*models.ResearchReport, error)
	SubmitTax(ctx context.Context, form models.TaxResearchForm) (*models.ResearchReport, error)
	Recent(ctx context.Context, limit int) ([]models.ResearchReport, error)
	Export(ctx context.Context, report models.ResearchReport) (*ExportResult, error)
}

type researchService struct {
	api       client.ResearchAPI
	cache     *query.Cache
	store     results.Repository
	exportDir string
	uploader  ReportUploader
	log       logging.Logger
	now       func() time.Time

	legal  query.Mutation[models.LegalResearchForm, *models.ResearchReport]
	tax    query.Mutation[models.TaxResearchForm, *models.ResearchReport]
	recent query.Query[int, []models.ResearchReport]
}

// NewResearchService wires the research use cases. uploader may be nil.
func NewResearchService(api client.ResearchAPI, cache *query.Cache, store results.Repository,
	exportDir string, uploader ReportUploader, log logging.Logger) ResearchService {
	s := &researchService{
		api:       api,
		cache:     cache,
		store:     store,
		exportDir: exportDir,
		uploader:  uploader,
		log:       log,
		now:       time.Now,
	}
	s.legal = query.Mutation[models.LegalResearchForm, *models.ResearchReport]{
		Name:        "legalResearch",
		Invalidates: []string{TagResearch},
		Do: func(ctx context.Context, f models.LegalResearchForm) (*models.ResearchReport, error) {
			return keep(ctx, s, api.SubmitLegalResearch, f)
		},
	}
	s.tax = query.Mutation[models.TaxResearchForm, *models.ResearchReport]{
		Name:        "taxResearch",
		Invalidates: []string{TagResearch},
		Do: func(ctx context.Context, f models.TaxResearchForm) (*models.ResearchReport, error) {
			return keep(ctx, s, api.SubmitTaxResearch, f)
		},
	}
	s.recent = query.Query[int, []models.ResearchReport]{
		Name:  "researchReports",
		Tags:  []string{TagResearch},
		Fetch: s.loadRecent,
	}
	return s
}

func (s *researchService) SubmitLegal(ctx context.Context, form models.LegalResearchForm) (*models.ResearchReport, error) {
	if err := check(form); err != nil {
		return nil, err
	}
	return query.Mutate(ctx, s.cache, s.legal, form)
}

func (s *researchService) SubmitTax(ctx context.Context, form models.TaxResearchForm) (*models.ResearchReport, error) {
	if err := check(form); err != nil {
		return nil, err
	}
	return query.Mutate(ctx, s.cache, s.tax, form)
}

// keep submits the form and stores the answer locally. A storage failure is
// logged; the report is still returned.
func keep[F any](ctx context.Context, s *researchService, submit func(context.Context, F) (*models.ResearchReport, error), form F) (*models.ResearchReport, error) {
	report, err := submit(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResearchFailed, err)
	}
	now := s.now().UTC()
	if report.Timestamp == "" {
		report.Timestamp = now.Format(time.RFC3339)
	}

	b, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	key := reportKeyPrefix + report.Kind + ":" + strconv.FormatInt(now.UnixNano(), 10)
	if err := s.store.Put(ctx, results.Result{Key: key, Value: b, FetchedAt: now}); err != nil {
		s.log.Warn(ctx, "report not saved locally", "kind", report.Kind, "error", err)
	}
	return report, nil
}

// Recent lists locally saved reports, newest first. limit <= 0 means all.
func (s *researchService) Recent(ctx context.Context, limit int) ([]models.ResearchReport, error) {
	return query.Fetch(ctx, s.cache, s.recent, limit)
}

func (s *researchService) loadRecent(ctx context.Context, limit int) ([]models.ResearchReport, error) {
	rows, err := s.store.List(ctx, reportKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]models.ResearchReport, 0, len(rows))
	for _, r := range rows {
		if limit > 0 && len(out) == limit {
			break
		}
		var rep models.ResearchReport
		if err := json.Unmarshal(r.Value, &rep); err != nil {
			s.log.Warn(ctx, "skipping unreadable report", "key", r.Key, "error", err)
			continue
		}
		out = append(out, rep)
	}
	return out, nil
}

// Export renders report as markdown into the export directory and uploads
// it when an uploader is configured. An upload failure keeps the local file.
func (s *researchService) Export(ctx context.Context, report models.ResearchReport) (*ExportResult, error) {
	if strings.TrimSpace(report.FinalReport) == "" {
		return nil, invalid("report", "report is empty")
	}
	dir, err := filex.EnsureDir(s.exportDir)
	if err != nil {
		return nil, fmt.Errorf("export dir: %w", err)
	}

	kind := report.Kind
	if kind == "" {
		kind = "research"
	}
	name := fmt.Sprintf("%s-report_%s.md", kind, s.now().Format("2006-01-02_150405"))
	body := []byte(renderReport(kind, report))

	res := &ExportResult{Path: filepath.Join(dir, name)}
	if err := filex.WriteFileAtomic(res.Path, body, 0o600); err != nil {
		return nil, fmt.Errorf("export report: %w", err)
	}

	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, "reports/"+name, body, "text/markdown; charset=utf-8")
		if err != nil {
			s.log.Warn(ctx, "report upload failed", "file", name, "error", err)
			return res, fmt.Errorf("upload report: %w", err)
		}
		res.URL = url
	}
	return res, nil
}

func renderReport(kind string, r models.ResearchReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s review report\n\n", strings.ToUpper(kind[:1])+kind[1:])
	if r.Timestamp != "" {
		fmt.Fprintf(&b, "_Generated: %s_\n\n", r.Timestamp)
	}
	b.WriteString(strings.TrimSpace(r.FinalReport))
	b.WriteString("\n")
	return b.String()
}
