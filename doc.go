// Package mcpl is the root of the MCPL connection core for Go, providing
// convenient exports of the components from the sub-packages.
//
// # Overview
//
// The library consists of several sub-packages:
//
//   - pkg/transport: The connection primitive framing JSON-RPC 2.0 over
//     newline-delimited JSON
//   - pkg/protocol: Message types, structural classification, MCPL method
//     schemas, and capability negotiation
//   - pkg/errors: The connection error taxonomy
//   - pkg/logging: Structured logging
//   - pkg/observability: Prometheus metrics and OpenTelemetry tracing
//
// # Opening a Connection
//
// A connection wraps an already-established stream; dialing and listening
// stay with the caller:
//
//	sock, err := net.Dial("tcp", addr)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	conn := mcpl.NewConn(sock)
//	defer conn.Close()
//
//	result, err := conn.SendRequest(ctx, protocol.MethodInitialize, params)
//
// Over stdio, where stdout must carry nothing but protocol frames:
//
//	conn := mcpl.NewStreamConn(os.Stdin, os.Stdout)
//
// # Serving Peer Requests
//
// Either side may initiate calls. The receiving side consumes them with
// NextMessage and answers requests explicitly:
//
//	for {
//	    msg, err := conn.NextMessage(ctx)
//	    if err != nil {
//	        if mcplerrors.IsClosed(err) {
//	            return nil
//	        }
//	        return err
//	    }
//	    if msg.IsRequest() {
//	        err = conn.SendResponse(ctx, msg.Request.ID, handle(msg))
//	    }
//	}
package mcpl
