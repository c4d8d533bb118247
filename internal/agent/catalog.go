// Package agent drives the multi-turn conversation between the LLM and the
// dashboard's capabilities: it generates the tool catalog from module
// metadata, dispatches the tool calls the model requests and folds their
// results back into the conversation.
package agent

import (
	"encoding/json"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/adpulse/adpulse/internal/dataquery"
	"github.com/adpulse/adpulse/internal/modules"
)

// moduleToolPrefix prefixes every module-backed tool name. The module id is
// recovered from the Binding, not by re-parsing the name at dispatch time.
const moduleToolPrefix = "run_"

// Kind tags what a tool call resolves to.
type Kind int

const (
	KindModule Kind = iota
	KindQuery
)

// ParamSchema is one JSON-Schema-like parameter descriptor.
type ParamSchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Minimum     *float64 `json:"minimum,omitempty"`
	Maximum     *float64 `json:"maximum,omitempty"`
}

// ToolDescriptor is the vendor-neutral description of one callable tool.
type ToolDescriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]ParamSchema `json:"parameters"`
}

// Binding pairs a descriptor with its resolved dispatch target, decided
// once at catalog-generation time.
type Binding struct {
	Descriptor ToolDescriptor
	Kind       Kind
	ModuleID   string // set when Kind == KindModule
}

// Catalog generates tool bindings from the module registry.
type Catalog struct {
	reg *modules.Registry
}

// NewCatalog returns a catalog over reg.
func NewCatalog(reg *modules.Registry) *Catalog {
	return &Catalog{reg: reg}
}

// Tools returns the bindings for one category: a run_<id> tool per module
// in the category (modules.CategoryUniversal covers them all) followed by
// the fixed data-query tools, which are available in every category so the
// agent always has a raw-query fallback. The result is deterministic for a
// given registry state.
func (c *Catalog) Tools(category string) []Binding {
	mods := c.reg.ByCategory(category)
	out := make([]Binding, 0, len(mods)+len(queryDescriptors))
	for _, m := range mods {
		out = append(out, moduleBinding(m))
	}
	for _, d := range queryDescriptors {
		out = append(out, Binding{Descriptor: d, Kind: KindQuery})
	}
	return out
}

func moduleBinding(m modules.Module) Binding {
	meta := m.Metadata()
	cfg := m.DefaultConfig()

	params := make(map[string]ParamSchema, len(cfg.ParamMeta))
	for name, spec := range cfg.ParamMeta {
		ps := ParamSchema{
			Type:        spec.Type,
			Description: spec.Label,
		}
		if spec.Default != nil {
			ps.Description = fmt.Sprintf("%s (default %v)", ps.Description, spec.Default)
		}
		if spec.Type == "integer" || spec.Type == "number" {
			ps.Minimum = spec.Min
			ps.Maximum = spec.Max
		}
		params[name] = ps
	}

	desc := meta.Description
	if meta.LongDescription != "" {
		desc = desc + " " + meta.LongDescription
	}

	return Binding{
		Descriptor: ToolDescriptor{
			Name:        moduleToolPrefix + meta.ID,
			Description: desc,
			Parameters:  params,
		},
		Kind:     KindModule,
		ModuleID: meta.ID,
	}
}

// MarshalDescriptors renders the descriptor list as indented JSON. Map keys
// are serialized in sorted order, so the output is byte-stable for a given
// catalog and safe to assert exact equality on.
func MarshalDescriptors(bindings []Binding) ([]byte, error) {
	descs := make([]ToolDescriptor, 0, len(bindings))
	for _, b := range bindings {
		descs = append(descs, b.Descriptor)
	}
	return json.MarshalIndent(descs, "", "  ")
}

// toolInfos converts bindings into the eino schema shipped to the model.
// Numeric bounds are folded into the parameter description; all parameters
// stay optional because every module defines usable defaults.
func toolInfos(bindings []Binding) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(bindings))
	for _, b := range bindings {
		params := make(map[string]*schema.ParameterInfo, len(b.Descriptor.Parameters))
		for name, p := range b.Descriptor.Parameters {
			desc := p.Description
			if p.Minimum != nil {
				desc = fmt.Sprintf("%s, minimum %v", desc, *p.Minimum)
			}
			if p.Maximum != nil {
				desc = fmt.Sprintf("%s, maximum %v", desc, *p.Maximum)
			}
			params[name] = &schema.ParameterInfo{
				Type:     schema.DataType(p.Type),
				Desc:     desc,
				Required: false,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        b.Descriptor.Name,
			Desc:        b.Descriptor.Description,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// queryDescriptors is the fixed, hand-authored set of data-query tools.
// They are appended to every category's catalog in this order.
var queryDescriptors = []ToolDescriptor{
	{
		Name:        dataquery.ToolListCampaigns,
		Description: "List tracked campaigns with their traffic source, network, offer and status.",
		Parameters: map[string]ParamSchema{
			"limit": limitParam(),
		},
	},
	{
		Name:        dataquery.ToolCampaignDaily,
		Description: "Per-day clicks, conversions, cost and revenue for one campaign.",
		Parameters: map[string]ParamSchema{
			"campaign_id": {Type: "string", Description: "ID of the campaign to inspect"},
			"from":        fromParam(),
			"to":          toParam(),
			"limit":       limitParam(),
		},
	},
	{
		Name:        dataquery.ToolAggregateStats,
		Description: "Cross-campaign totals (clicks, conversions, cost, revenue, profit, ROI) plus a per-campaign breakdown.",
		Parameters: map[string]ParamSchema{
			"from":  fromParam(),
			"to":    toParam(),
			"limit": limitParam(),
		},
	},
	{
		Name:        dataquery.ToolByTrafficSource,
		Description: "Aggregated performance grouped by traffic source.",
		Parameters: map[string]ParamSchema{
			"from":  fromParam(),
			"to":    toParam(),
			"limit": limitParam(),
		},
	},
	{
		Name:        dataquery.ToolByNetwork,
		Description: "Aggregated performance grouped by affiliate network.",
		Parameters: map[string]ParamSchema{
			"from":  fromParam(),
			"to":    toParam(),
			"limit": limitParam(),
		},
	},
	{
		Name:        dataquery.ToolByOffer,
		Description: "Aggregated performance grouped by offer.",
		Parameters: map[string]ParamSchema{
			"from":  fromParam(),
			"to":    toParam(),
			"limit": limitParam(),
		},
	},
}

func limitParam() ParamSchema {
	min, max := float64(1), float64(dataquery.MaxLimit)
	return ParamSchema{
		Type:        "integer",
		Description: fmt.Sprintf("Maximum records to return (default %d)", dataquery.DefaultLimit),
		Minimum:     &min,
		Maximum:     &max,
	}
}

func fromParam() ParamSchema {
	return ParamSchema{Type: "string", Description: "Start date, YYYY-MM-DD (default: 7 days ago)"}
}

func toParam() ParamSchema {
	return ParamSchema{Type: "string", Description: "End date, YYYY-MM-DD (default: today)"}
}
