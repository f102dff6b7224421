package domain

// Visualization is a render-ready graph transform of a status
// snapshot: one node per stage in a left-to-right chain.
type Visualization struct {
	Nodes    []VisualizationNode    `json:"nodes"`
	Edges    []VisualizationEdge    `json:"edges"`
	Metadata map[string]interface{} `json:"metadata"`
}

// VisualizationNode is one pipeline stage positioned for rendering
type VisualizationNode struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Status string  `json:"status"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// VisualizationEdge links consecutive stages; an edge is completed
// only when both of its endpoints are completed.
type VisualizationEdge struct {
	Source    string `json:"source"`
	Target    string `json:"target"`
	Completed bool   `json:"completed"`
}

// nodeSpacing is the horizontal gap between rendered stage nodes
const nodeSpacing = 160

// BuildVisualization flattens a derived status into a linear stage
// graph. Purely a transform of the status, no new semantics.
func BuildVisualization(status *SupplyChainStatus) *Visualization {
	viz := &Visualization{
		Metadata: map[string]interface{}{
			"item_id":          status.ItemID,
			"item_name":        status.ItemName,
			"current_stage":    string(status.CurrentStage),
			"progress_percent": status.ProgressPercent,
		},
	}

	for i, state := range status.Stages {
		viz.Nodes = append(viz.Nodes, VisualizationNode{
			ID:     string(state.Stage),
			Label:  string(state.Stage),
			Status: state.Status,
			X:      float64(i * nodeSpacing),
			Y:      0,
		})
		if i == 0 {
			continue
		}
		previous := status.Stages[i-1]
		viz.Edges = append(viz.Edges, VisualizationEdge{
			Source:    string(previous.Stage),
			Target:    string(state.Stage),
			Completed: previous.Status == StageComplete && state.Status == StageComplete,
		})
	}

	return viz
}
