// Package transport provides the MCPL connection primitive: a bidirectional
// JSON-RPC 2.0 connection framed as newline-delimited JSON over any ordered
// byte stream.
//
// A Conn is built from a bound network stream (NewConn) or an arbitrary
// reader/writer pair such as stdin/stdout (NewStreamConn); how the stream is
// established is out of scope here. The connection allocates a strictly
// increasing integer identifier for each local call, correlates the matching
// inbound response back to that call, and buffers peer-initiated requests and
// notifications that arrive mid-call so NextMessage later yields them in
// arrival order. A single physical connection thereby serves both directions
// at once without a second channel.
//
// The connection classifies but does not dispatch: NextMessage hands the
// caller a classified request or notification, and answering it via
// SendResponse or SendError is the caller's responsibility.
//
// Typical host-side usage:
//
//	conn := transport.NewConn(sock)
//	result, err := conn.SendRequest(ctx, protocol.MethodInitialize, params)
//
// and server-side:
//
//	for {
//		msg, err := conn.NextMessage(ctx)
//		if err != nil {
//			return err
//		}
//		if msg.IsRequest() {
//			_ = conn.SendResponse(ctx, msg.Request.ID, result)
//		}
//	}
package transport
