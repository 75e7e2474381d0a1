// Package export runs the caption image export pipeline.
//
// An Orchestrator moves one export at a time through fixed stages, each
// reported with a progress floor:
//
//	preparing (0) -> watermarking (25, optional) -> converting (50)
//	  -> downloading (75) -> complete (100)
//
// Exports submitted while another runs wait in FIFO order. Abort cancels the
// running export at its next stage boundary; work already inside scaling or
// encoding finishes first. A caller whose context ends while queued leaves the
// line with a cancelled result.
//
// Scaled surfaces are cached per orchestrator for a short TTL, keyed by size,
// target dimension and a content digest.
//
// Every failure is mapped by UserMessage to a short sentence meant for end
// users. Internal error text is logged, never returned.
package export
