package expression

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/quatton/qtripal/pkg/kv"
	"github.com/quatton/qtripal/pkg/qargs"
	"github.com/quatton/qtripal/pkg/qjob"
	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

const (
	listPath          = "chado/list"
	biomaterialTable  = "biomaterial"
	biomaterialsCache = "chado/list:biomaterial"
	pendingCache      = "chado/list:biomaterial:pending"

	// pendingTTL bounds how long an unfinished job keeps the list uncached.
	pendingTTL = 24 * time.Hour
)

// Biomaterial is a row of the Chado biomaterial table. Raw keeps every
// column the site returned; the named fields are the ones filters use.
type Biomaterial struct {
	ID                  string
	Name                string
	Description         string
	BiosourceProviderID string
	TaxonID             string
	DbxrefID            string

	Raw map[string]json.RawMessage
}

func (b *Biomaterial) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Biomaterial{
		ID:                  text(raw["biomaterial_id"]),
		Name:                text(raw["name"]),
		Description:         text(raw["description"]),
		BiosourceProviderID: text(raw["biosourceprovider_id"]),
		TaxonID:             text(raw["taxon_id"]),
		DbxrefID:            text(raw["dbxref_id"]),
		Raw:                 raw,
	}
	return nil
}

func (b Biomaterial) MarshalJSON() ([]byte, error) {
	if b.Raw != nil {
		return json.Marshal(b.Raw)
	}
	return json.Marshal(map[string]string{
		"biomaterial_id":       b.ID,
		"name":                 b.Name,
		"description":          b.Description,
		"biosourceprovider_id": b.BiosourceProviderID,
		"taxon_id":             b.TaxonID,
		"dbxref_id":            b.DbxrefID,
	})
}

// text renders a JSON scalar as the string the site would compare against.
// Null and missing columns are empty.
func text(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// BiomaterialFilter selects biomaterials by exact match. Empty fields match
// everything; set fields must all match.
type BiomaterialFilter struct {
	ProviderID    string `json:"provider_id"`
	BiomaterialID string `json:"biomaterial_id"`
	OrganismID    string `json:"organism_id"`
	DbxrefID      string `json:"dbxref_id"`
}

// Match reports whether b satisfies every set field of f.
func (f BiomaterialFilter) Match(b Biomaterial) bool {
	if f.BiomaterialID != "" && b.ID != f.BiomaterialID {
		return false
	}
	if f.ProviderID != "" && b.BiosourceProviderID != f.ProviderID {
		return false
	}
	if f.OrganismID != "" && b.TaxonID != f.OrganismID {
		return false
	}
	if f.DbxrefID != "" && b.DbxrefID != f.DbxrefID {
		return false
	}
	return true
}

// FilterBiomaterials returns the items matching f, keeping their order.
func FilterBiomaterials(items []Biomaterial, f BiomaterialFilter) []Biomaterial {
	out := make([]Biomaterial, 0, len(items))
	for _, b := range items {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	return out
}

// GetBiomaterials lists biomaterials and filters them client-side.
func (c *Client) GetBiomaterials(ctx context.Context, f BiomaterialFilter) ([]Biomaterial, error) {
	all, err := c.listBiomaterials(ctx)
	if err != nil {
		return nil, err
	}
	return FilterBiomaterials(all, f), nil
}

func (c *Client) listBiomaterials(ctx context.Context) ([]Biomaterial, error) {
	cacheable := c.cache != nil && c.settled(ctx)
	if cacheable {
		data, err := c.cache.Get(ctx, biomaterialsCache)
		switch {
		case err == nil:
			var cached []Biomaterial
			if err := json.Unmarshal(data, &cached); err == nil {
				c.logger.Debug("biomaterial list served from cache", "count", len(cached))
				return cached, nil
			}
			c.logger.Warn("discarding unreadable biomaterial cache entry")
		case !errors.Is(err, kv.ErrNotFound):
			c.logger.Warn("biomaterial cache unavailable", "error", err)
		}
	}

	var all []Biomaterial
	if err := c.requester.Request(ctx, listPath, map[string]string{"table": biomaterialTable}, &all); err != nil {
		return nil, fmt.Errorf("listing biomaterials: %w", err)
	}

	if cacheable {
		if data, err := json.Marshal(all); err == nil {
			if err := c.cache.Set(ctx, biomaterialsCache, data, c.cacheTTL); err != nil {
				c.logger.Warn("caching biomaterial list failed", "error", err)
			}
		}
	}
	return all, nil
}

func (c *Client) invalidateBiomaterials(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Delete(ctx, biomaterialsCache); err != nil {
		c.logger.Warn("invalidating biomaterial cache failed", "error", err)
	}
}

// submitChange queues a job that modifies the biomaterial table. Once the job
// is queued the cached list is dropped, whatever happens afterwards. A job
// that has not been seen to finish is recorded as pending so the list is not
// cached again until it settles.
func (c *Client) submitChange(ctx context.Context, req qjob.Request, noWait bool) (*Result, error) {
	res, err := c.queue(ctx, req, noWait)
	if res != nil {
		c.invalidateBiomaterials(ctx)
		if res.Job == nil {
			c.markPending(ctx, res.Submission.JobID)
		}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Client) markPending(ctx context.Context, id qjob.ID) {
	if c.cache == nil {
		return
	}
	ids, err := c.pendingJobs(ctx)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		c.logger.Warn("reading pending biomaterial jobs failed", "error", err)
	}
	c.storePending(ctx, append(ids, id))
}

func (c *Client) pendingJobs(ctx context.Context) ([]qjob.ID, error) {
	data, err := c.cache.Get(ctx, pendingCache)
	if err != nil {
		return nil, err
	}
	var ids []qjob.ID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("decoding pending jobs: %w", err)
	}
	return ids, nil
}

func (c *Client) storePending(ctx context.Context, ids []qjob.ID) {
	data, err := json.Marshal(ids)
	if err == nil {
		err = c.cache.Set(ctx, pendingCache, data, pendingTTL)
	}
	if err != nil {
		c.logger.Warn("recording pending biomaterial jobs failed", "error", err)
	}
}

// settled reports whether the biomaterial list may be served from and
// written to the cache. It is false while any recorded job is still
// running or cannot be looked up.
func (c *Client) settled(ctx context.Context) bool {
	ids, err := c.pendingJobs(ctx)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return true
	case err != nil:
		c.logger.Warn("reading pending biomaterial jobs failed", "error", err)
		return false
	}

	var open []qjob.ID
	for _, id := range ids {
		job, err := c.jobs.Get(ctx, id)
		if err != nil {
			c.logger.Debug("pending job lookup failed", "job_id", id, "error", err)
			open = append(open, id)
			continue
		}
		if !job.Status.Terminal() {
			open = append(open, id)
		}
	}

	if len(open) > 0 {
		c.storePending(ctx, open)
		return false
	}
	if err := c.cache.Delete(ctx, pendingCache); err != nil {
		c.logger.Warn("clearing pending biomaterial jobs failed", "error", err)
	}
	// Anything cached while the jobs ran may predate their effect.
	c.invalidateBiomaterials(ctx)
	return true
}

// Biomaterial file formats.
const (
	FileTypeXML = "xml"
	FileTypeTSV = "tsv"
	FileTypeCSV = "csv"
)

type AddBiomaterialParams struct {
	OrganismID string `json:"organism_id" validate:"required"`
	FilePath   string `json:"file_path" validate:"required"`
	FileType   string `json:"file_type" validate:"required,oneof=xml tsv csv"`
	NoWait     bool   `json:"no_wait"`
}

// AddBiomaterialRequest picks the parser callback for the file type and
// builds its argument list.
func (c *Client) AddBiomaterialRequest(p AddBiomaterialParams) (qjob.Request, error) {
	if err := c.check(p); err != nil {
		return qjob.Request{}, err
	}

	req := qjob.Request{
		Name:   "Add Biomaterial",
		Module: ModuleAnalysisExpression,
	}
	if p.FileType == FileTypeXML {
		req.Callback = CallbackXMLBiomaterial
		req.Arguments = qargs.List{p.FilePath, p.OrganismID}
	} else {
		req.Callback = CallbackFlatBiomaterial
		req.Arguments = qargs.List{p.FilePath, p.OrganismID, p.FileType}
	}
	return req, nil
}

// AddBiomaterial loads biomaterials from an xml, tsv or csv file.
func (c *Client) AddBiomaterial(ctx context.Context, p AddBiomaterialParams) (*Result, error) {
	req, err := c.AddBiomaterialRequest(p)
	if err != nil {
		return nil, err
	}
	return c.submitChange(ctx, req, p.NoWait)
}

type DeleteBiomaterialsParams struct {
	Names      qargs.StringList `json:"names"`
	OrganismID string           `json:"organism_id"`
	AnalysisID string           `json:"analysis_id"`
	JobName    string           `json:"job_name"`
	NoWait     bool             `json:"no_wait"`
}

// DeleteBiomaterialsArgs builds the keyed arguments of the delete job.
func (c *Client) DeleteBiomaterialsArgs(p DeleteBiomaterialsParams) (qargs.Map, error) {
	names := p.Names.Join()
	if names == "" && p.OrganismID == "" && p.AnalysisID == "" {
		return nil, qerr.Errorf(qerr.CodeInvalidArgument,
			"please provide either a list of biomaterial names, an analysis id, or an organism id")
	}

	return qargs.Map{
		{Key: "biomaterial_names", Value: names},
		{Key: "organism_id", Value: p.OrganismID},
		{Key: "analysis_id", Value: p.AnalysisID},
	}, nil
}

// DeleteBiomaterials removes biomaterials by name, organism or analysis.
func (c *Client) DeleteBiomaterials(ctx context.Context, p DeleteBiomaterialsParams) (*Result, error) {
	args, err := c.DeleteBiomaterialsArgs(p)
	if err != nil {
		return nil, err
	}

	name := p.JobName
	if name == "" {
		name = "Delete Biomaterials"
	}

	return c.submitChange(ctx, qjob.Request{
		Name:      name,
		Module:    ModuleBiomaterial,
		Callback:  CallbackDeleteBiomaterials,
		Arguments: args,
	}, p.NoWait)
}

type SyncBiomaterialsParams struct {
	// IDs limits the sync to these biomaterial ids; empty syncs all.
	IDs qargs.StringList `json:"ids"`
	// MaxSync caps the number of records synced; empty means no cap.
	MaxSync string `json:"max_sync"`
	JobName string `json:"job_name"`
	NoWait  bool   `json:"no_wait"`
}

// SyncBiomaterialsArgs builds the keyed arguments of chado_node_sync_records.
// Node syncing does not exist on Tripal 3 sites.
func (c *Client) SyncBiomaterialsArgs(p SyncBiomaterialsParams) (qargs.Map, error) {
	if c.version == 3 {
		return nil, qerr.Errorf(qerr.CodeUnsupported, "syncing biomaterials is not yet possible in Tripal 3")
	}

	return qargs.Map{
		{Key: "base_table", Value: biomaterialTable},
		{Key: "max_sync", Value: p.MaxSync},
		{Key: "organism_id", Value: ""},
		{Key: "types", Value: []string{}},
		{Key: "ids", Value: p.IDs.Values()},
		{Key: "linking_table", Value: "chado_biomaterial"},
		{Key: "node_type", Value: "chado_biomaterial"},
	}, nil
}

// SyncBiomaterials publishes Chado biomaterials as Drupal nodes.
func (c *Client) SyncBiomaterials(ctx context.Context, p SyncBiomaterialsParams) (*Result, error) {
	args, err := c.SyncBiomaterialsArgs(p)
	if err != nil {
		return nil, err
	}

	name := p.JobName
	if name == "" {
		name = "Sync Biomaterials"
	}

	return c.submitChange(ctx, qjob.Request{
		Name:      name,
		Module:    ModuleChadoBiomaterial,
		Callback:  CallbackSyncRecords,
		Arguments: args,
	}, p.NoWait)
}
