package lifecycle

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"hirepath/api-gateway/internal/store"
	"hirepath/api-gateway/internal/uploader"
	"hirepath/api-gateway/models"
)

// ---- fakes ----

type fakeJobStore struct {
	jobs      map[uuid.UUID]models.JobOpening
	created   []store.NewJobOpening
	createErr error
}

func newFakeJobStore() *fakeJobStore {
	return &fakeJobStore{jobs: map[uuid.UUID]models.JobOpening{}}
}

func (f *fakeJobStore) Create(_ context.Context, in store.NewJobOpening) (models.JobOpening, error) {
	if f.createErr != nil {
		return models.JobOpening{}, f.createErr
	}
	f.created = append(f.created, in)
	job := models.JobOpening{
		ID:                 uuid.New(),
		Title:              in.Title,
		Company:            in.Company,
		Location:           in.Location,
		Type:               in.Type,
		Description:        in.Description,
		Contact:            in.Contact,
		Address:            in.Address,
		Status:             models.JobStatusOpen,
		RecruiterID:        in.RecruiterID,
		RequirementsFileID: in.RequirementsFileID,
		LayoutFileID:       in.LayoutFileID,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobStore) GetByID(_ context.Context, id uuid.UUID) (models.JobOpening, error) {
	job, ok := f.jobs[id]
	if !ok {
		return models.JobOpening{}, store.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobStore) GetOwned(_ context.Context, id, recruiterID uuid.UUID) (models.JobOpening, error) {
	job, ok := f.jobs[id]
	if !ok || job.RecruiterID != recruiterID {
		return models.JobOpening{}, store.ErrNotFound
	}
	return job, nil
}

func (f *fakeJobStore) ListOpen(context.Context, store.JobFilter) (store.JobPage, error) {
	return store.JobPage{}, nil
}

func (f *fakeJobStore) ListByRecruiter(context.Context, uuid.UUID) ([]models.JobWithApplicantCount, error) {
	return nil, nil
}

func (f *fakeJobStore) UpdateStatus(_ context.Context, id, recruiterID uuid.UUID, status models.JobStatus) error {
	job, ok := f.jobs[id]
	if !ok || job.RecruiterID != recruiterID {
		return store.ErrNotFound
	}
	job.Status = status
	f.jobs[id] = job
	return nil
}

func (f *fakeJobStore) UpdateFields(_ context.Context, id, _ uuid.UUID, _ store.JobUpdate) (models.JobOpening, error) {
	return f.jobs[id], nil
}

func (f *fakeJobStore) SetParsedRequirements(_ context.Context, id uuid.UUID, parsed json.RawMessage) error {
	job, ok := f.jobs[id]
	if !ok {
		return store.ErrNotFound
	}
	job.ParsedRequirements = parsed
	f.jobs[id] = job
	return nil
}

type fakeApplicationStore struct {
	mu        sync.Mutex // ShortlistTopN serializes like the locked transaction
	apps      map[uuid.UUID]models.Application
	order     []uuid.UUID // insertion order, the shortlist tiebreak
	createErr error
}

func newFakeApplicationStore() *fakeApplicationStore {
	return &fakeApplicationStore{apps: map[uuid.UUID]models.Application{}}
}

func (f *fakeApplicationStore) Create(_ context.Context, in store.NewApplication) (models.Application, error) {
	if f.createErr != nil {
		return models.Application{}, f.createErr
	}
	for _, app := range f.apps {
		if app.JobOpeningID == in.JobOpeningID && app.UserID == in.UserID {
			return models.Application{}, store.ErrDuplicateApplication
		}
	}
	app := models.Application{
		ID:           uuid.New(),
		JobOpeningID: in.JobOpeningID,
		UserID:       in.UserID,
		ResumeID:     in.ResumeID,
		Status:       models.ApplicationStatusPending,
		CreatedAt:    time.Now(),
	}
	f.apps[app.ID] = app
	f.order = append(f.order, app.ID)
	return app, nil
}

func (f *fakeApplicationStore) Exists(_ context.Context, jobID, userID uuid.UUID) (bool, error) {
	for _, app := range f.apps {
		if app.JobOpeningID == jobID && app.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeApplicationStore) GetForRecruiter(context.Context, uuid.UUID, uuid.UUID) (models.ApplicationDetail, error) {
	return models.ApplicationDetail{}, store.ErrNotFound
}

func (f *fakeApplicationStore) ListForRecruiter(context.Context, uuid.UUID) ([]models.ApplicationDetail, error) {
	return nil, nil
}

func (f *fakeApplicationStore) ApplySkillGap(_ context.Context, id uuid.UUID, result store.SkillGapResult) error {
	app, ok := f.apps[id]
	if !ok {
		return store.ErrNotFound
	}
	app.ParsedResume = result.ParsedResume
	app.LayoutScore = result.LayoutScore
	app.ContentScore = result.ContentScore
	app.SkillGap = result.SkillGap
	f.apps[id] = app
	return nil
}

// ShortlistTopN mirrors the Postgres implementation's contract: combined
// score descending, insertion order as tiebreak, one-time per job. The mutex
// stands in for the job-row lock that serializes concurrent transactions.
func (f *fakeApplicationStore) ShortlistTopN(_ context.Context, jobID uuid.UUID, n int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := []uuid.UUID{}
	for _, id := range f.order {
		if f.apps[id].JobOpeningID == jobID {
			if f.apps[id].Status != models.ApplicationStatusPending {
				return 0, store.ErrAlreadyShortlisted
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, store.ErrNoApplications
	}

	sort.SliceStable(ids, func(i, j int) bool {
		a, b := f.apps[ids[i]], f.apps[ids[j]]
		return a.ContentScore+a.LayoutScore > b.ContentScore+b.LayoutScore
	})

	if n > len(ids) {
		n = len(ids)
	}
	for _, id := range ids[:n] {
		app := f.apps[id]
		app.Status = models.ApplicationStatusAccepted
		f.apps[id] = app
	}
	return n, nil
}

type fakeUploadStore struct {
	uploads map[uuid.UUID]models.Upload
}

func newFakeUploadStore() *fakeUploadStore {
	return &fakeUploadStore{uploads: map[uuid.UUID]models.Upload{}}
}

func (f *fakeUploadStore) add(up models.Upload) models.Upload {
	if up.ID == uuid.Nil {
		up.ID = uuid.New()
	}
	f.uploads[up.ID] = up
	return up
}

func (f *fakeUploadStore) Create(_ context.Context, in store.NewUpload) (models.Upload, error) {
	return f.add(models.Upload{
		Name:       in.Name,
		FileType:   in.FileType,
		UploadType: in.UploadType,
		URL:        in.URL,
		UserID:     in.UserID,
		CreatedAt:  time.Now(),
	}), nil
}

func (f *fakeUploadStore) GetByID(_ context.Context, id uuid.UUID) (models.Upload, error) {
	up, ok := f.uploads[id]
	if !ok {
		return models.Upload{}, store.ErrNotFound
	}
	return up, nil
}

func (f *fakeUploadStore) ListByUserAndType(context.Context, uuid.UUID, models.UploadType) ([]models.Upload, error) {
	return nil, nil
}

type fakeUploader struct {
	uploads   *fakeUploadStore
	failFor   models.UploadType
	failErr   error
	callCount int
}

func (f *fakeUploader) Upload(_ context.Context, file uploader.File, bucket models.UploadType, ownerID *uuid.UUID) (uploader.Result, error) {
	f.callCount++
	if f.failErr != nil && bucket == f.failFor {
		return uploader.Result{}, f.failErr
	}
	up := f.uploads.add(models.Upload{
		Name:       file.Name,
		FileType:   file.MimeType,
		UploadType: bucket,
		URL:        "https://files.example.com/" + file.Name,
		UserID:     ownerID,
	})
	return uploader.Result{UploadID: up.ID, URL: up.URL, Content: file.Content}, nil
}

type fakeFetcher struct {
	blobs map[string][]byte
	fail  map[string]error
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	if err, ok := f.fail[url]; ok {
		return nil, err
	}
	blob, ok := f.blobs[url]
	if !ok {
		return nil, fmt.Errorf("no blob at %s", url)
	}
	return blob, nil
}

type fakeEmitter struct {
	events []models.Event
	err    error
}

func (f *fakeEmitter) Emit(_ context.Context, event models.Event) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.events = append(f.events, event)
	return int64(len(f.events)), nil
}

type fixture struct {
	jobs     *fakeJobStore
	apps     *fakeApplicationStore
	uploads  *fakeUploadStore
	uploader *fakeUploader
	fetcher  *fakeFetcher
	emitter  *fakeEmitter
	service  *Service
}

func newFixture() *fixture {
	uploads := newFakeUploadStore()
	f := &fixture{
		jobs:     newFakeJobStore(),
		apps:     newFakeApplicationStore(),
		uploads:  uploads,
		uploader: &fakeUploader{uploads: uploads},
		fetcher:  &fakeFetcher{blobs: map[string][]byte{}, fail: map[string]error{}},
		emitter:  &fakeEmitter{},
	}

	log := logrus.New()
	log.SetOutput(nopWriter{})

	f.service = NewService(f.jobs, f.apps, f.uploads, f.uploader, f.fetcher, f.emitter, log)
	return f
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) { return len(p), nil }

func jobInput(layout, requirements *uploader.File) CreateJobInput {
	return CreateJobInput{
		RecruiterID:  uuid.New(),
		SessionToken: "token-1",
		Fields: JobFields{
			Title:       "Frontend developer",
			Company:     "Acme",
			Type:        models.JobTypeFullTime,
			Description: "Looking for a frontend developer with React experience.",
			Contact:     "jobs@acme.example",
		},
		LayoutFile:       layout,
		RequirementsFile: requirements,
	}
}

// seedCandidate registers a resume upload owned by a fresh candidate and an
// open job with a fetchable layout blob, the baseline for apply tests.
func (f *fixture) seedCandidate(t *testing.T) (candidateID uuid.UUID, jobID uuid.UUID, resumeID uuid.UUID) {
	t.Helper()
	candidateID = uuid.New()

	resume := f.uploads.add(models.Upload{
		Name:       "resume.pdf",
		FileType:   "application/pdf",
		UploadType: models.UploadTypeResume,
		URL:        "https://files.example.com/resume.pdf",
		UserID:     &candidateID,
	})
	f.fetcher.blobs[resume.URL] = []byte("resume-bytes")

	layout := f.uploads.add(models.Upload{
		Name:       "layout.pdf",
		FileType:   "application/pdf",
		UploadType: models.UploadTypeLayout,
		URL:        "https://files.example.com/layout.pdf",
	})
	f.fetcher.blobs[layout.URL] = []byte("layout-bytes")

	job, err := f.jobs.Create(context.Background(), store.NewJobOpening{
		Title:        "Frontend developer",
		Company:      "Acme",
		Type:         models.JobTypeFullTime,
		Description:  "desc",
		Contact:      "jobs@acme.example",
		RecruiterID:  uuid.New(),
		LayoutFileID: layout.ID,
	})
	if err != nil {
		t.Fatalf("seeding job: %v", err)
	}
	return candidateID, job.ID, resume.ID
}

func (f *fixture) submit(candidateID, jobID, resumeID uuid.UUID) (models.Application, error) {
	return f.service.SubmitApplication(context.Background(), SubmitApplicationInput{
		CandidateID:  candidateID,
		SessionToken: "token-1",
		JobID:        jobID,
		ResumeID:     resumeID,
	})
}

// ---- CreateJobOpening ----

func TestCreateJobOpening_RequiresLayoutFile(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateJobOpening(context.Background(), jobInput(nil, nil))
	if !errors.Is(err, ErrLayoutFileRequired) {
		t.Fatalf("CreateJobOpening() error = %v, want ErrLayoutFileRequired", err)
	}
	if len(f.jobs.created) != 0 {
		t.Errorf("job row was created despite missing layout file")
	}
	if f.uploader.callCount != 0 {
		t.Errorf("files were uploaded despite missing layout file")
	}
}

func TestCreateJobOpening_UploadFailureAborts(t *testing.T) {
	f := newFixture()
	f.uploader.failFor = models.UploadTypeLayout
	f.uploader.failErr = errors.New("storage returned 503")

	layout := &uploader.File{Name: "layout.pdf", MimeType: "application/pdf", Content: []byte("x")}
	_, err := f.service.CreateJobOpening(context.Background(), jobInput(layout, nil))
	if err == nil {
		t.Fatal("CreateJobOpening() succeeded despite upload failure")
	}
	if len(f.jobs.created) != 0 {
		t.Errorf("job row was created despite upload failure")
	}
	if len(f.emitter.events) != 0 {
		t.Errorf("event was emitted despite aborted creation")
	}
}

func TestCreateJobOpening_WithoutRequirementsFile(t *testing.T) {
	f := newFixture()

	layout := &uploader.File{Name: "layout.pdf", MimeType: "application/pdf", Content: []byte("layout")}
	job, err := f.service.CreateJobOpening(context.Background(), jobInput(layout, nil))
	if err != nil {
		t.Fatalf("CreateJobOpening() error = %v", err)
	}

	if job.RequirementsFileID != nil {
		t.Errorf("RequirementsFileID = %v, want nil", job.RequirementsFileID)
	}
	if job.ParsedRequirements != nil {
		t.Errorf("ParsedRequirements = %s, want nil", job.ParsedRequirements)
	}
	if len(f.emitter.events) != 0 {
		t.Errorf("got %d events, want none without a requirements file", len(f.emitter.events))
	}
}

func TestCreateJobOpening_WithRequirementsFileEmitsEvent(t *testing.T) {
	f := newFixture()

	layout := &uploader.File{Name: "layout.pdf", MimeType: "application/pdf", Content: []byte("layout")}
	requirements := &uploader.File{Name: "reqs.pdf", MimeType: "application/pdf", Content: []byte("requirements-bytes")}

	job, err := f.service.CreateJobOpening(context.Background(), jobInput(layout, requirements))
	if err != nil {
		t.Fatalf("CreateJobOpening() error = %v", err)
	}
	if job.RequirementsFileID == nil {
		t.Fatal("RequirementsFileID is nil, want the uploaded file id")
	}

	if len(f.emitter.events) != 1 {
		t.Fatalf("got %d events, want 1", len(f.emitter.events))
	}
	event := f.emitter.events[0]
	if event.Type != models.EventTypeRequirementsReady {
		t.Errorf("event type = %q, want %q", event.Type, models.EventTypeRequirementsReady)
	}
	if event.Session.JobID != job.ID.String() {
		t.Errorf("event session job id = %q, want %q", event.Session.JobID, job.ID)
	}
	if event.Data["title"] != job.Title || event.Data["description"] != job.Description {
		t.Errorf("event data = %v, want title and description of the job", event.Data)
	}

	wantFile := base64.StdEncoding.EncodeToString(requirements.Content)
	if event.File == nil || *event.File != wantFile {
		t.Errorf("event file is not the base64 requirements content")
	}
}

func TestCreateJobOpening_EmitFailureDoesNotFailRequest(t *testing.T) {
	f := newFixture()
	f.emitter.err = errors.New("queue down")

	layout := &uploader.File{Name: "layout.pdf", MimeType: "application/pdf", Content: []byte("layout")}
	requirements := &uploader.File{Name: "reqs.pdf", MimeType: "application/pdf", Content: []byte("reqs")}

	job, err := f.service.CreateJobOpening(context.Background(), jobInput(layout, requirements))
	if err != nil {
		t.Fatalf("CreateJobOpening() error = %v, want success despite emit failure", err)
	}
	if _, ok := f.jobs.jobs[job.ID]; !ok {
		t.Error("job row missing after emit failure")
	}
}

// ---- SubmitApplication ----

func TestSubmitApplication_Prechecks(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *fixture, candidateID, jobID, resumeID uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID)
		wantErr error
	}{
		{
			name: "resume does not exist",
			mutate: func(f *fixture, c, j, r uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return c, j, uuid.New()
			},
			wantErr: ErrResumeNotFound,
		},
		{
			name: "resume owned by someone else",
			mutate: func(f *fixture, c, j, r uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return uuid.New(), j, r
			},
			wantErr: ErrResumeNotOwned,
		},
		{
			name: "upload is not a resume",
			mutate: func(f *fixture, c, j, r uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
				other := f.uploads.add(models.Upload{
					UploadType: models.UploadTypeRequirements,
					URL:        "https://files.example.com/other.pdf",
					UserID:     &c,
				})
				return c, j, other.ID
			},
			wantErr: ErrNotAResume,
		},
		{
			name: "job does not exist",
			mutate: func(f *fixture, c, j, r uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
				return c, uuid.New(), r
			},
			wantErr: ErrJobNotFound,
		},
		{
			name: "job is closed",
			mutate: func(f *fixture, c, j, r uuid.UUID) (uuid.UUID, uuid.UUID, uuid.UUID) {
				job := f.jobs.jobs[j]
				job.Status = models.JobStatusClosed
				f.jobs.jobs[j] = job
				return c, j, r
			},
			wantErr: ErrJobNotOpen,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			candidateID, jobID, resumeID := f.seedCandidate(t)
			candidateID, jobID, resumeID = tt.mutate(f, candidateID, jobID, resumeID)

			_, err := f.submit(candidateID, jobID, resumeID)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SubmitApplication() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.apps.apps) != 0 {
				t.Errorf("application row was created despite failed precheck")
			}
		})
	}
}

func TestSubmitApplication_Success(t *testing.T) {
	f := newFixture()
	candidateID, jobID, resumeID := f.seedCandidate(t)

	app, err := f.submit(candidateID, jobID, resumeID)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}

	if app.Status != models.ApplicationStatusPending {
		t.Errorf("status = %q, want pending", app.Status)
	}
	if app.LayoutScore != 0 || app.ContentScore != 0 {
		t.Errorf("scores = (%v, %v), want (0, 0)", app.LayoutScore, app.ContentScore)
	}

	if len(f.emitter.events) != 1 {
		t.Fatalf("got %d events, want 1", len(f.emitter.events))
	}
	event := f.emitter.events[0]
	if event.Type != models.EventTypeSkillGapRequest {
		t.Errorf("event type = %q, want %q", event.Type, models.EventTypeSkillGapRequest)
	}
	if event.Session.ApplicationID != app.ID.String() {
		t.Errorf("event application id = %q, want %q", event.Session.ApplicationID, app.ID)
	}

	wantResume := base64.StdEncoding.EncodeToString([]byte("resume-bytes"))
	if event.File == nil || *event.File != wantResume {
		t.Error("event file is not the base64 resume content")
	}
	wantLayout := base64.StdEncoding.EncodeToString([]byte("layout-bytes"))
	if event.Data["layout_reference"] != wantLayout {
		t.Error("event data is missing the base64 layout reference")
	}
}

func TestSubmitApplication_Duplicate(t *testing.T) {
	f := newFixture()
	candidateID, jobID, resumeID := f.seedCandidate(t)

	if _, err := f.submit(candidateID, jobID, resumeID); err != nil {
		t.Fatalf("first SubmitApplication() error = %v", err)
	}
	_, err := f.submit(candidateID, jobID, resumeID)
	if !errors.Is(err, store.ErrDuplicateApplication) {
		t.Fatalf("second SubmitApplication() error = %v, want ErrDuplicateApplication", err)
	}
	if len(f.apps.apps) != 1 {
		t.Errorf("got %d applications, want 1", len(f.apps.apps))
	}
}

func TestSubmitApplication_FetchFailureSkipsEvent(t *testing.T) {
	f := newFixture()
	candidateID, jobID, resumeID := f.seedCandidate(t)
	f.fetcher.fail["https://files.example.com/resume.pdf"] = errors.New("storage returned 502")

	app, err := f.submit(candidateID, jobID, resumeID)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v, want success despite fetch failure", err)
	}
	if _, ok := f.apps.apps[app.ID]; !ok {
		t.Error("application row missing after fetch failure")
	}
	if len(f.emitter.events) != 0 {
		t.Errorf("got %d events, want none when the resume blob cannot be fetched", len(f.emitter.events))
	}
}

// ---- pipeline callbacks ----

func TestApplyRequirementsResult_Overwrites(t *testing.T) {
	f := newFixture()
	_, jobID, _ := f.seedCandidate(t)

	first := json.RawMessage(`{"skills":["go"]}`)
	second := json.RawMessage(`{"skills":["go","sql"]}`)

	if err := f.service.ApplyRequirementsResult(context.Background(), jobID, first); err != nil {
		t.Fatalf("first ApplyRequirementsResult() error = %v", err)
	}
	if err := f.service.ApplyRequirementsResult(context.Background(), jobID, second); err != nil {
		t.Fatalf("second ApplyRequirementsResult() error = %v", err)
	}
	if got := string(f.jobs.jobs[jobID].ParsedRequirements); got != string(second) {
		t.Errorf("parsed requirements = %s, want the second write", got)
	}
}

func TestApplySkillGapResult_LastWriteWins(t *testing.T) {
	f := newFixture()
	candidateID, jobID, resumeID := f.seedCandidate(t)
	app, err := f.submit(candidateID, jobID, resumeID)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}

	results := []store.SkillGapResult{
		{LayoutScore: 0.5, ContentScore: 0.5, SkillGap: json.RawMessage(`{"missing":["k8s"]}`)},
		{LayoutScore: 0.8, ContentScore: 0.9, SkillGap: json.RawMessage(`{"missing":[]}`)},
	}
	for i, result := range results {
		if err := f.service.ApplySkillGapResult(context.Background(), app.ID, result); err != nil {
			t.Fatalf("ApplySkillGapResult() call %d error = %v", i+1, err)
		}
	}

	final := f.apps.apps[app.ID]
	if final.LayoutScore != 0.8 || final.ContentScore != 0.9 {
		t.Errorf("final scores = (%v, %v), want (0.8, 0.9)", final.LayoutScore, final.ContentScore)
	}
	if string(final.SkillGap) != `{"missing":[]}` {
		t.Errorf("final skill gap = %s, want the second write", final.SkillGap)
	}
}

func TestApplySkillGapResult_UnknownApplication(t *testing.T) {
	f := newFixture()

	err := f.service.ApplySkillGapResult(context.Background(), uuid.New(), store.SkillGapResult{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("ApplySkillGapResult() error = %v, want ErrNotFound", err)
	}
}

// ---- shortlisting ----

// seedScoredApplications creates count applications for one job with the
// given combined scores (split evenly between layout and content).
func seedScoredApplications(t *testing.T, f *fixture, scores []float64) (recruiterID, jobID uuid.UUID, appIDs []uuid.UUID) {
	t.Helper()
	_, jobID, _ = f.seedCandidate(t)
	recruiterID = f.jobs.jobs[jobID].RecruiterID

	for i, score := range scores {
		candidateID := uuid.New()
		resume := f.uploads.add(models.Upload{
			UploadType: models.UploadTypeResume,
			URL:        fmt.Sprintf("https://files.example.com/resume-%d.pdf", i),
			UserID:     &candidateID,
		})
		f.fetcher.blobs[resume.URL] = []byte("resume")

		app, err := f.submit(candidateID, jobID, resume.ID)
		if err != nil {
			t.Fatalf("seeding application %d: %v", i, err)
		}
		err = f.service.ApplySkillGapResult(context.Background(), app.ID, store.SkillGapResult{
			LayoutScore:  score / 2,
			ContentScore: score / 2,
		})
		if err != nil {
			t.Fatalf("scoring application %d: %v", i, err)
		}
		appIDs = append(appIDs, app.ID)
	}
	return recruiterID, jobID, appIDs
}

func TestShortlistCandidates_InvalidCount(t *testing.T) {
	f := newFixture()
	recruiterID, jobID, _ := seedScoredApplications(t, f, []float64{1.0})

	for _, count := range []int{0, -3} {
		_, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, count)
		if !errors.Is(err, ErrInvalidShortlistCount) {
			t.Errorf("ShortlistCandidates(count=%d) error = %v, want ErrInvalidShortlistCount", count, err)
		}
	}
}

func TestShortlistCandidates_OwnershipEnforced(t *testing.T) {
	f := newFixture()
	_, jobID, _ := seedScoredApplications(t, f, []float64{1.0})

	_, err := f.service.ShortlistCandidates(context.Background(), uuid.New(), jobID, 1)
	if !errors.Is(err, ErrJobNotFound) {
		t.Errorf("ShortlistCandidates() with foreign recruiter error = %v, want ErrJobNotFound", err)
	}
}

func TestShortlistCandidates_TopNByCombinedScore(t *testing.T) {
	f := newFixture()
	recruiterID, jobID, appIDs := seedScoredApplications(t, f, []float64{0.4, 1.7, 0.9})

	accepted, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 2)
	if err != nil {
		t.Fatalf("ShortlistCandidates() error = %v", err)
	}
	if accepted != 2 {
		t.Fatalf("accepted = %d, want 2", accepted)
	}

	wantAccepted := map[uuid.UUID]bool{appIDs[1]: true, appIDs[2]: true}
	for i, id := range appIDs {
		got := f.apps.apps[id].Status
		want := models.ApplicationStatusPending
		if wantAccepted[id] {
			want = models.ApplicationStatusAccepted
		}
		if got != want {
			t.Errorf("application %d status = %q, want %q", i, got, want)
		}
	}
}

func TestShortlistCandidates_SecondCallConflicts(t *testing.T) {
	f := newFixture()
	recruiterID, jobID, _ := seedScoredApplications(t, f, []float64{0.4, 1.7})

	if _, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 1); err != nil {
		t.Fatalf("first ShortlistCandidates() error = %v", err)
	}
	_, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 1)
	if !errors.Is(err, store.ErrAlreadyShortlisted) {
		t.Errorf("second ShortlistCandidates() error = %v, want ErrAlreadyShortlisted", err)
	}
}

// TestShortlistCandidates_ConcurrentCallsOneWinner exercises the one-time
// guard under contention: of two simultaneous shortlist calls exactly one
// may promote, the other must see the conflict, and no application may be
// accepted twice or beyond the requested count.
func TestShortlistCandidates_ConcurrentCallsOneWinner(t *testing.T) {
	f := newFixture()
	recruiterID, jobID, appIDs := seedScoredApplications(t, f, []float64{0.4, 1.7, 0.9})

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, conflicted int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, store.ErrAlreadyShortlisted):
			conflicted++
		default:
			t.Errorf("ShortlistCandidates() error = %v, want nil or ErrAlreadyShortlisted", err)
		}
	}
	if succeeded != 1 || conflicted != 1 {
		t.Fatalf("got %d successes and %d conflicts, want exactly one of each", succeeded, conflicted)
	}

	var accepted int
	for _, id := range appIDs {
		if f.apps.apps[id].Status == models.ApplicationStatusAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Errorf("%d applications accepted, want exactly 1", accepted)
	}
}

func TestShortlistCandidates_CountClampedToTotal(t *testing.T) {
	f := newFixture()
	recruiterID, jobID, appIDs := seedScoredApplications(t, f, []float64{0.4, 0.6})

	accepted, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 10)
	if err != nil {
		t.Fatalf("ShortlistCandidates() error = %v", err)
	}
	if accepted != len(appIDs) {
		t.Errorf("accepted = %d, want %d", accepted, len(appIDs))
	}
}

func TestShortlistCandidates_NoApplications(t *testing.T) {
	f := newFixture()
	_, jobID, _ := f.seedCandidate(t)
	recruiterID := f.jobs.jobs[jobID].RecruiterID

	_, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 3)
	if !errors.Is(err, store.ErrNoApplications) {
		t.Errorf("ShortlistCandidates() error = %v, want ErrNoApplications", err)
	}
}

// TestApplyScoreShortlistScenario walks the full flow: apply, pipeline
// scores the resume, recruiter shortlists one, the application is accepted.
func TestApplyScoreShortlistScenario(t *testing.T) {
	f := newFixture()
	candidateID, jobID, resumeID := f.seedCandidate(t)
	recruiterID := f.jobs.jobs[jobID].RecruiterID

	app, err := f.submit(candidateID, jobID, resumeID)
	if err != nil {
		t.Fatalf("SubmitApplication() error = %v", err)
	}
	if app.Status != models.ApplicationStatusPending || app.LayoutScore != 0 || app.ContentScore != 0 {
		t.Fatalf("fresh application = %+v, want pending with zero scores", app)
	}

	err = f.service.ApplySkillGapResult(context.Background(), app.ID, store.SkillGapResult{
		LayoutScore:  0.8,
		ContentScore: 0.9,
	})
	if err != nil {
		t.Fatalf("ApplySkillGapResult() error = %v", err)
	}

	accepted, err := f.service.ShortlistCandidates(context.Background(), recruiterID, jobID, 1)
	if err != nil {
		t.Fatalf("ShortlistCandidates() error = %v", err)
	}
	if accepted != 1 {
		t.Fatalf("accepted = %d, want 1", accepted)
	}
	if got := f.apps.apps[app.ID].Status; got != models.ApplicationStatusAccepted {
		t.Errorf("final status = %q, want accepted", got)
	}
}
