package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		ID:   "wf-1",
		Name: "Inventory refresh",
		Nodes: []*WorkflowNode{
			{ID: "fetch", NodeType: "httprequest", Title: "Fetch inventory"},
			{ID: "store", NodeType: "dbwrite", Title: "Store rows"},
		},
		Connections: []*NodeConnection{
			{ID: "c1", SourceNodeID: "fetch", SourcePort: PortMain, TargetNodeID: "store", TargetPort: PortMain},
		},
		Settings: WorkflowSettings{ErrorStrategy: ErrorStrategyStop},
	}
}

func TestWorkflowDefinitionValidate(t *testing.T) {
	require.NoError(t, validDefinition().Validate())
}

func TestWorkflowDefinitionValidateNoNodes(t *testing.T) {
	def := validDefinition()
	def.Nodes = nil
	def.Connections = nil

	err := def.Validate()
	require.Error(t, err)

	defErr := &DefinitionError{}
	require.ErrorAs(t, err, &defErr)
	assert.Contains(t, defErr.Reason, "no nodes")
}

func TestWorkflowDefinitionValidateDanglingConnections(t *testing.T) {
	tests := []struct {
		name       string
		connection *NodeConnection
		want       string
	}{
		{
			name:       "missing source node",
			connection: &NodeConnection{ID: "c2", SourceNodeID: "ghost", SourcePort: "main", TargetNodeID: "store", TargetPort: "main"},
			want:       "non-existent source node",
		},
		{
			name:       "missing target node",
			connection: &NodeConnection{ID: "c2", SourceNodeID: "fetch", SourcePort: "main", TargetNodeID: "ghost", TargetPort: "main"},
			want:       "non-existent target node",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := validDefinition()
			def.Connections = append(def.Connections, tt.connection)

			err := def.Validate()
			require.Error(t, err)

			defErr := &DefinitionError{}
			require.ErrorAs(t, err, &defErr)
			assert.Contains(t, defErr.Reason, tt.want)
		})
	}
}

func TestWorkflowDefinitionValidateDuplicateNodeID(t *testing.T) {
	def := validDefinition()
	def.Nodes = append(def.Nodes, &WorkflowNode{ID: "fetch", NodeType: "log"})

	err := def.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate node ID")
}

func TestWorkflowDefinitionValidateNodeWithoutType(t *testing.T) {
	def := validDefinition()
	def.Nodes[0].NodeType = ""

	err := def.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no type specified")
}

func TestStartAndSinkNodes(t *testing.T) {
	def := validDefinition()
	def.Nodes = append(def.Nodes, &WorkflowNode{ID: "isolated", NodeType: "log"})

	starts := def.StartNodes()
	startIDs := make([]string, 0, len(starts))

	for _, node := range starts {
		startIDs = append(startIDs, node.ID)
	}

	assert.ElementsMatch(t, []string{"fetch", "isolated"}, startIDs)

	sinks := def.SinkNodes()
	sinkIDs := make([]string, 0, len(sinks))

	for _, node := range sinks {
		sinkIDs = append(sinkIDs, node.ID)
	}

	assert.ElementsMatch(t, []string{"store", "isolated"}, sinkIDs)
}

func TestNodeDisplayName(t *testing.T) {
	node := &WorkflowNode{ID: "n1", NodeType: "log"}
	assert.Equal(t, "n1", node.DisplayName())

	node.Title = "Log payload"
	assert.Equal(t, "Log payload", node.DisplayName())
}
