package expression

import (
	"context"

	"github.com/quatton/qtripal/pkg/qargs"
	"github.com/quatton/qtripal/pkg/qjob"
)

// Match types accepted by AddExpression and the values the loader expects.
const (
	MatchUniquename = "uniquename"
	MatchName       = "name"

	fileTypeColumn = "col"
	fileTypeMatrix = "mat"
)

// AddExpressionParams are the inputs of the expression loader. The
// biomaterial provider, array design, assay, acquisition and quantification
// ids are only honoured by Tripal 3 sites.
type AddExpressionParams struct {
	OrganismID string `json:"organism_id" validate:"required"`
	AnalysisID string `json:"analysis_id" validate:"required"`
	FilePath   string `json:"file_path" validate:"required"`

	// UseColumn marks column-format input. Column files need FileExtension
	// (without the leading dot); matrix files do not.
	UseColumn     bool   `json:"use_column"`
	FileExtension string `json:"file_extension" validate:"required_if=UseColumn true"`

	// MatchType is uniquename (default) or name.
	MatchType string `json:"match_type" validate:"omitempty,oneof=uniquename name"`

	BiomaterialProvider string `json:"biomaterial_provider"`
	ArrayDesign         string `json:"array_design"`
	AssayID             string `json:"assay_id"`
	AcquisitionID       string `json:"acquisition_id"`
	QuantificationID    string `json:"quantification_id"`
	StartRegex          string `json:"start_regex"`
	StopRegex           string `json:"stop_regex"`

	NoWait bool `json:"no_wait"`
}

// AddExpressionArgs builds the 13 positional arguments of
// tripal_expression_loader after validating params.
func (c *Client) AddExpressionArgs(p AddExpressionParams) (qargs.List, error) {
	if err := c.check(p); err != nil {
		return nil, err
	}

	fileType := fileTypeMatrix
	if p.UseColumn {
		fileType = fileTypeColumn
	}

	matchType := p.MatchType
	if matchType == "" || matchType == MatchUniquename {
		matchType = "uniq"
	}

	return qargs.List{
		p.OrganismID,
		p.AnalysisID,
		qargs.Optional(p.BiomaterialProvider),
		qargs.Optional(p.ArrayDesign),
		qargs.Optional(p.AssayID),
		qargs.Optional(p.AcquisitionID),
		qargs.Optional(p.QuantificationID),
		p.FilePath,
		qargs.Optional(p.FileExtension),
		fileType,
		qargs.Optional(p.StartRegex),
		qargs.Optional(p.StopRegex),
		matchType,
	}, nil
}

// AddExpression loads an expression file, or a directory of them, against
// an organism and analysis.
func (c *Client) AddExpression(ctx context.Context, p AddExpressionParams) (*Result, error) {
	args, err := c.AddExpressionArgs(p)
	if err != nil {
		return nil, err
	}

	return c.submit(ctx, qjob.Request{
		Name:      "Add Expression",
		Module:    ModuleAnalysisExpression,
		Callback:  CallbackExpressionLoader,
		Arguments: args,
	}, p.NoWait)
}
