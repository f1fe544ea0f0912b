package expression

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quatton/qtripal/pkg/qjob"
)

// fakeJobs records submissions and reports a fixed terminal status.
type fakeJobs struct {
	mu       sync.Mutex
	requests []qjob.Request
	reply    *qjob.Submission
	addErr   error
	runs     int
	waited   []qjob.ID
	waitErr  error
	final    qjob.Status
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{
		reply: &qjob.Submission{JobID: "17"},
		final: qjob.StatusCompleted,
	}
}

func (f *fakeJobs) Add(_ context.Context, req qjob.Request) (*qjob.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return f.reply, nil
}

func (f *fakeJobs) Get(_ context.Context, id qjob.ID) (*qjob.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &qjob.Job{ID: id, Status: f.final}, nil
}

func (f *fakeJobs) setFinal(s qjob.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.final = s
}

func (f *fakeJobs) Run(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs++
	return nil
}

func (f *fakeJobs) Wait(ctx context.Context, id qjob.ID) (*qjob.Job, error) {
	f.mu.Lock()
	f.waited = append(f.waited, id)
	err := f.waitErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Get(ctx, id)
}

func (f *fakeJobs) last() qjob.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeSite answers chado/list with a canned JSON body.
type fakeSite struct {
	mu    sync.Mutex
	body  string
	calls []string
}

func (s *fakeSite) Request(_ context.Context, path string, params any, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, _ := json.Marshal(params)
	s.calls = append(s.calls, path+" "+string(p))
	if path != "chado/list" {
		return fmt.Errorf("unexpected path %s", path)
	}
	return json.Unmarshal([]byte(s.body), out)
}

func (s *fakeSite) setBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.body = body
}

func (s *fakeSite) listCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

const biomaterialsJSON = `[
  {"biomaterial_id": "1", "name": "leaf-a", "biosourceprovider_id": "10", "taxon_id": "5", "dbxref_id": null, "description": "leaf"},
  {"biomaterial_id": "2", "name": "leaf-b", "biosourceprovider_id": "10", "taxon_id": "6", "dbxref_id": "100"},
  {"biomaterial_id": "3", "name": "root-a", "biosourceprovider_id": "11", "taxon_id": "5", "dbxref_id": "100"},
  {"biomaterial_id": 4,   "name": "root-b", "biosourceprovider_id": null, "taxon_id": "5", "dbxref_id": "101"}
]`
