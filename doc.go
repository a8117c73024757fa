// Package hitl provides a human-in-the-loop approval engine.
//
// Autonomous agents submit plans, data checkpoints and reports for human
// review; the engine tracks each request through a strict lifecycle
// (pending -> approved / rejected / timeout / cancelled), fans out change
// events to connected observers and drives bounded revision loops for
// rejected content. The engine ships with pluggable service layers:
//
//   - store    – persistence with compare-and-set transitions
//   - approval – lifecycle manager (request, wait, decide, cancel, sweep)
//   - hub      – observer fan-out with pending snapshot on connect
//   - revision – bounded reject/regenerate/resubmit controller
//   - notifier – outbound delivery (webhooks, logs) over a message queue
//
// hitl is designed to be embedded in host applications. End-users typically
// interact with the engine via the high-level Service façade exposed by the
// root package:
//
//	srv := hitl.New()
//	_ = srv.Start(ctx)
//	request, _ := srv.Approvals().RequestApproval(ctx, approval.Submission{
//		Kind:    model.KindPlanApproval,
//		AgentID: "planner-1",
//		Title:   "Deploy plan",
//		Content: "...",
//	})
//	outcome, _ := srv.Approvals().WaitForDecision(ctx, request.ID, time.Minute)
//
// For more details see the individual sub-packages.
package hitl
