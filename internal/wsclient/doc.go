// Package wsclient implements the minimal RFC 6455 client the smoke suites use
// to talk to WebSocket targets.
//
// Scope is deliberately narrow:
//   - opening handshake over plain TCP (ws://) or TLS (wss://)
//   - masked, single-frame text messages from client to server
//   - single, unfragmented text frames (masked or not) from server to client
//   - close frames from the server surface as ErrClosedByPeer
//
// Anything else (fragmentation, binary, ping/pong, extensions) is rejected
// with ErrUnsupportedFrame. Bytes that arrive together with the handshake
// response are kept and consumed by the first RecvText call.
package wsclient
