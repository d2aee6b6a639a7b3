// Package rangeworkers splits an integer interval across a fixed number of
// remote workers and collects one result from each.
//
// A Coordinator listens until the expected number of workers has connected,
// partitions the global interval into that many contiguous sub-ranges and
// sends sub-range i to the i-th worker to connect. All workers are served
// concurrently; the coordinator waits until every worker has replied or
// failed and then reports completion.
//
// The protocol is one text line in each direction. The coordinator sends
// "<start> <end>\n" and the worker answers with a single line produced by its
// compute unit (see package compute). Lines travel over plain TCP or, with
// TransportWebSocket, as websocket text frames.
//
// There is no load balancing and no recovery. A worker that fails or
// disconnects leaves its slot failed in the Report; Run returns an
// *IncompleteError in that case unless Config.TolerateFailures is set.
package rangeworkers
