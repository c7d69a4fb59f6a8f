package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Project-Sylos/Specular/internal/metrics"
	"github.com/Project-Sylos/Specular/internal/types"
	"go.uber.org/zap"
)

// Strategy selects how a node's content is exported
type Strategy int

const (
	// StrategyUnsupported produces an empty payload
	StrategyUnsupported Strategy = iota
	// StrategyEditableDocument exports a native document as Markdown
	StrategyEditableDocument
	// StrategyJSONFile fetches a JSON file and re-indents it
	StrategyJSONFile
)

func (s Strategy) String() string {
	switch s {
	case StrategyEditableDocument:
		return "editable_document"
	case StrategyJSONFile:
		return "json_file"
	}
	return "unsupported"
}

// StrategyFor picks the export strategy of a node. Documents win over the
// JSON rule; everything else is unsupported.
func StrategyFor(n *types.Node) Strategy {
	switch {
	case n.TypeTag == types.TypeDocument:
		return StrategyEditableDocument
	case !n.IsContainer() && isJSON(n):
		return StrategyJSONFile
	}
	return StrategyUnsupported
}

func isJSON(n *types.Node) bool {
	return strings.EqualFold(n.Extension, "json") || types.SplitExtension(n.Name) == "json"
}

// OutputName returns the local file name for a node exported with s.
// Exported documents always end in .md: a node without an extension gets
// one appended, any other extension is replaced.
func OutputName(n *types.Node, s Strategy) string {
	name := SanitizeName(n.Name)
	if s != StrategyEditableDocument || n.Extension == "" {
		if s == StrategyEditableDocument {
			return name + ".md"
		}
		return name
	}

	suffix := "." + n.Extension
	if len(name) > len(suffix) && strings.EqualFold(name[len(name)-len(suffix):], suffix) {
		if strings.EqualFold(n.Extension, "md") {
			return name
		}
		name = name[:len(name)-len(suffix)]
	}
	return name + ".md"
}

// ExportedItem is one exported file waiting to be written
type ExportedItem struct {
	Node              types.Node
	Payload           string
	ParentContainerID string
	Strategy          Strategy
	FileName          string

	// Failed is set when the fetch or formatting failed and Payload was emptied
	Failed bool
}

// Dispatcher exports nodes according to their strategy
type Dispatcher struct {
	exporter Exporter
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher fetching through exporter
func NewDispatcher(exporter Exporter, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{exporter: exporter, log: log}
}

// Export produces the item for node. It never fails: any fetch or
// formatting error is logged and yields an empty payload.
func (d *Dispatcher) Export(ctx context.Context, node types.Node, parentID string) ExportedItem {
	s := StrategyFor(&node)
	item := ExportedItem{
		Node:              node,
		ParentContainerID: parentID,
		Strategy:          s,
		FileName:          OutputName(&node, s),
	}

	var err error
	switch s {
	case StrategyEditableDocument:
		item.Payload, err = d.exporter.ExportAsMarkup(ctx, node.ID)
	case StrategyJSONFile:
		item.Payload, err = d.fetchJSON(ctx, node.ID)
	default:
		d.log.Debug("Unsupported content type, nothing to export",
			zap.String("node_id", node.ID),
			zap.String("name", node.Name),
			zap.String("type_tag", string(node.TypeTag)))
		return item
	}

	if err != nil {
		item.Payload = ""
		item.Failed = true
		metrics.RecordExportFailure(s.String())
		d.log.Warn("Export failed",
			zap.String("node_id", node.ID),
			zap.String("name", node.Name),
			zap.Stringer("strategy", s),
			zap.Error(err))
	}
	return item
}

// fetchJSON returns the raw file re-indented with two spaces.
// Object key order is kept as stored.
func (d *Dispatcher) fetchJSON(ctx context.Context, id string) (string, error) {
	raw, err := d.exporter.FetchRaw(ctx, id)
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", fmt.Errorf("failed to format JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.String(), nil
}
