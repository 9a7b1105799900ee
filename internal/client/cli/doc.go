// Package cli implements the interactive lexmail client.
//
// The App type wires the local session database, the credential store, the
// key vault and the HTTP transport together and exposes one method per REPL
// command. runREPL dispatches typed commands to those methods; input helpers
// (GetSimpleText, GetPassword, GetConfirmation) handle terminal I/O and are
// swappable in tests through package-level seams.
package cli
