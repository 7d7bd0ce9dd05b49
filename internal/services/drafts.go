package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/odnalezione/odnalezione-backend/internal/data/cache"
	"github.com/odnalezione/odnalezione-backend/internal/data/repos"
	types "github.com/odnalezione/odnalezione-backend/internal/domain"
	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/review"
	"github.com/odnalezione/odnalezione-backend/internal/observability"
	"github.com/odnalezione/odnalezione-backend/internal/platform/dbctx"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftInput is what a finished validation run leaves behind for review.
type DraftInput struct {
	FileName    string
	FileType    string
	FileContent string
	Records     []items.RecordEvaluation
}

type RecordView struct {
	items.RecordEvaluation
	review.RecordState
	Compliance review.Compliance `json:"compliance"`
}

type DraftView struct {
	FileName     string       `json:"fileName"`
	FileType     string       `json:"fileType,omitempty"`
	FileContent  string       `json:"fileContent,omitempty"`
	LastModified time.Time    `json:"lastModified"`
	Sort         string       `json:"sort"`
	Highlighted  *review.Cell `json:"highlighted,omitempty"`
	Accepted     []int        `json:"acceptedIndexes"`
	Selected     []int        `json:"selectedIndexes"`
	Records      []RecordView `json:"records"`
}

type DraftSummary struct {
	FileName      string    `json:"fileName"`
	LastModified  time.Time `json:"lastModified"`
	RecordCount   int       `json:"recordCount"`
	AcceptedCount int       `json:"acceptedCount"`
}

type ActionOutcome struct {
	Draft  *DraftView          `json:"draft"`
	Result review.ActionResult `json:"result"`
}

type DraftService interface {
	Create(dbc dbctx.Context, in DraftInput) (*DraftView, error)
	Get(dbc dbctx.Context, fileName string) (*DraftView, error)
	List(dbc dbctx.Context) ([]DraftSummary, error)
	Apply(dbc dbctx.Context, fileName string, action review.Action) (*ActionOutcome, error)
	Discard(dbc dbctx.Context, fileName string) (bool, error)
}

type openDraft struct {
	draft   *types.ImportDraft
	session *review.Session
}

type draftService struct {
	log     *logger.Logger
	repo    repos.ImportDraftRepo
	mirror  cache.DraftMirror
	metrics *observability.Metrics
	now     func() time.Time

	mu   sync.Mutex
	open map[string]*openDraft
}

// NewDraftService keeps review sessions in memory and writes drafts through to
// repo and mirror when they are configured. Storage failures are logged and
// never fail the caller.
func NewDraftService(log *logger.Logger, repo repos.ImportDraftRepo, mirror cache.DraftMirror, metrics *observability.Metrics) DraftService {
	return &draftService{
		log:     log.With("service", "DraftService"),
		repo:    repo,
		mirror:  mirror,
		metrics: metrics,
		now:     time.Now,
		open:    map[string]*openDraft{},
	}
}

func (s *draftService) Create(dbc dbctx.Context, in DraftInput) (*DraftView, error) {
	name := strings.TrimSpace(in.FileName)
	if name == "" {
		return nil, fmt.Errorf("draft file name required")
	}
	sess := review.NewSession(name, in.Records)
	d, err := sess.ToDraft(nil, s.now())
	if err != nil {
		return nil, err
	}
	d.FileType = in.FileType
	d.FileContent = in.FileContent

	s.mu.Lock()
	defer s.mu.Unlock()
	od := &openDraft{draft: d, session: sess}
	if prev, ok := s.open[name]; ok && prev.draft != nil {
		d.ID = prev.draft.ID
	}
	s.open[name] = od
	s.persist(dbc, od)
	s.log.Ctx(dbc.Ctx).Info("Draft created", "file_name", name, "records", sess.Len())
	return view(od), nil
}

func (s *draftService) Get(dbc dbctx.Context, fileName string) (*DraftView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(dbc, fileName)
	if err != nil {
		return nil, err
	}
	return view(od), nil
}

func (s *draftService) List(dbc dbctx.Context) ([]DraftSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byName := map[string]DraftSummary{}
	if s.repo != nil {
		stored, err := s.repo.List(dbc.Ctx, dbc.Tx)
		if err != nil {
			s.log.Warn("Listing stored drafts failed", "error", err)
		}
		for _, d := range stored {
			sess, err := review.FromDraft(d)
			if err != nil {
				s.log.Warn("Skipping unreadable draft", "file_name", d.FileName, "error", err)
				continue
			}
			byName[d.FileName] = summary(d, sess)
		}
	}
	for name, od := range s.open {
		byName[name] = summary(od.draft, od.session)
	}

	out := make([]DraftSummary, 0, len(byName))
	for _, sm := range byName {
		out = append(out, sm)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].FileName < out[j].FileName
	})
	return out, nil
}

func (s *draftService) Apply(dbc dbctx.Context, fileName string, action review.Action) (*ActionOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	od, err := s.lookup(dbc, fileName)
	if err != nil {
		return nil, err
	}
	res, err := od.session.Apply(action)
	s.metrics.IncReviewAction(string(action.Type), err)
	if err != nil {
		return nil, err
	}

	if len(res.Submitted) > 0 && s.mirror != nil {
		if err := s.mirror.AppendAccepted(dbc.Ctx, res.Submitted); err != nil {
			s.log.Warn("Mirroring accepted records failed", "file_name", od.draft.FileName, "error", err)
		}
	}
	if res.Deleted {
		s.remove(dbc, od.draft.FileName)
		return &ActionOutcome{Result: res}, nil
	}
	if res.Changed {
		if _, err := od.session.ToDraft(od.draft, s.now()); err != nil {
			return nil, err
		}
		s.persist(dbc, od)
	}
	return &ActionOutcome{Draft: view(od), Result: res}, nil
}

func (s *draftService) Discard(dbc dbctx.Context, fileName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	od, err := s.lookup(dbc, fileName)
	if errors.Is(err, ErrDraftNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	s.remove(dbc, od.draft.FileName)
	return true, nil
}

// lookup resolves fileName against open sessions, then the repo, then the
// redis mirror. Callers hold mu.
func (s *draftService) lookup(dbc dbctx.Context, fileName string) (*openDraft, error) {
	name := strings.TrimSpace(fileName)
	if name == "" {
		return nil, ErrDraftNotFound
	}
	if od, ok := s.open[name]; ok {
		return od, nil
	}
	if trimmed := trimExt(name); trimmed != name {
		if od, ok := s.open[trimmed]; ok {
			return od, nil
		}
	}
	d := s.fromRepo(dbc, name)
	if d == nil {
		d = s.fromMirror(dbc, name)
	}
	if d == nil {
		return nil, ErrDraftNotFound
	}
	sess, err := review.FromDraft(d)
	if err != nil {
		return nil, err
	}
	od := &openDraft{draft: d, session: sess}
	s.open[d.FileName] = od
	return od, nil
}

func (s *draftService) fromRepo(dbc dbctx.Context, name string) *types.ImportDraft {
	if s.repo == nil {
		return nil
	}
	d, err := s.repo.GetByFileName(dbc.Ctx, dbc.Tx, name)
	if err != nil {
		s.log.Warn("Loading draft failed", "file_name", name, "error", err)
		return nil
	}
	return d
}

func (s *draftService) fromMirror(dbc dbctx.Context, name string) *types.ImportDraft {
	if s.mirror == nil {
		return nil
	}
	drafts, err := s.mirror.LoadDrafts(dbc.Ctx)
	if err != nil {
		s.log.Warn("Loading mirrored drafts failed", "file_name", name, "error", err)
		return nil
	}
	trimmed := trimExt(name)
	for _, d := range drafts {
		if d != nil && (d.FileName == name || d.FileName == trimmed) {
			return d
		}
	}
	return nil
}

func (s *draftService) persist(dbc dbctx.Context, od *openDraft) {
	if s.repo != nil {
		saved, err := s.repo.Upsert(dbc.Ctx, dbc.Tx, od.draft)
		if err != nil {
			s.log.Warn("Saving draft failed", "file_name", od.draft.FileName, "error", err)
		} else {
			od.draft = saved
		}
	}
	s.mirrorAll(dbc)
}

func (s *draftService) remove(dbc dbctx.Context, fileName string) {
	delete(s.open, fileName)
	if s.repo != nil {
		if _, err := s.repo.Delete(dbc.Ctx, dbc.Tx, fileName); err != nil {
			s.log.Warn("Deleting draft failed", "file_name", fileName, "error", err)
		}
	}
	s.mirrorAll(dbc)
	s.log.Info("Draft removed", "file_name", fileName)
}

func (s *draftService) mirrorAll(dbc dbctx.Context) {
	if s.mirror == nil {
		return
	}
	all := map[string]*types.ImportDraft{}
	if s.repo != nil {
		stored, err := s.repo.List(dbc.Ctx, dbc.Tx)
		if err != nil {
			s.log.Warn("Listing drafts for mirror failed", "error", err)
		}
		for _, d := range stored {
			all[d.FileName] = d
		}
	}
	for name, od := range s.open {
		all[name] = od.draft
	}
	list := make([]*types.ImportDraft, 0, len(all))
	for _, d := range all {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].LastModified.After(list[j].LastModified) })
	if err := s.mirror.StoreDrafts(dbc.Ctx, list); err != nil {
		s.log.Warn("Mirroring drafts failed", "error", err)
	}
}

func view(od *openDraft) *DraftView {
	sess := od.session
	visible := sess.Visible()
	recs := make([]RecordView, 0, len(visible))
	for _, r := range visible {
		recs = append(recs, RecordView{
			RecordEvaluation: r,
			RecordState:      sess.State(r.Index),
			Compliance:       review.ComplianceOf(r.OverallScore),
		})
	}
	return &DraftView{
		FileName:     od.draft.FileName,
		FileType:     od.draft.FileType,
		FileContent:  od.draft.FileContent,
		LastModified: od.draft.LastModified,
		Sort:         string(sess.Sort()),
		Highlighted:  sess.Highlighted(),
		Accepted:     sess.Accepted(),
		Selected:     sess.Selected(),
		Records:      recs,
	}
}

func summary(d *types.ImportDraft, sess *review.Session) DraftSummary {
	return DraftSummary{
		FileName:      d.FileName,
		LastModified:  d.LastModified,
		RecordCount:   sess.Len(),
		AcceptedCount: len(sess.Accepted()),
	}
}

func trimExt(name string) string {
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		return name[:i]
	}
	return name
}
