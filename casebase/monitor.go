package casebase

import "github.com/poiesic/cbr/core"

// RetrievalMonitor provides hooks to observe a retrieval.
// Implement this interface to explain how a result was reached.
//
// With parallel retrieval enabled, CaseScored is called from several
// goroutines at once and must be safe for concurrent use.
type RetrievalMonitor interface {
	Start(query *core.Query, assignment Assignment)
	CaseScored(index int, c *core.Case, similarity float64, perField map[string]float64)
	NewBest(index int, similarity float64)
	Finish(result *core.RetrievedCase)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ *core.Query, _ Assignment)                               {}
func (n *noopMonitor) CaseScored(_ int, _ *core.Case, _ float64, _ map[string]float64) {}
func (n *noopMonitor) NewBest(_ int, _ float64)                                        {}
func (n *noopMonitor) Finish(_ *core.RetrievedCase)                                    {}
