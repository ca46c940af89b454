// Package message builds structured chat-bot messages: an ordered list of
// content blocks (text, html, buttons, inputs, selects, loading indicators)
// plus message-wide options such as state access requests, encryption
// metadata and event or tag driven updates.
//
// A Message is mutated through chained calls and then handed to a transport
// through Snapshot:
//
//	m := message.NewText("Transfer 5 coins?")
//	if err := m.RequestTransfer(5); err != nil {
//		return err
//	}
//	m, err := m.ButtonRow().
//		Button("Yes").
//		Button("No", message.Value("no"), message.Next(message.StateRead)).
//		EndRow()
//
// Option setters validate their input before touching the message and
// return a *ValidationError wrapping one of the Err* sentinels. Options are
// merged field by field with the last write winning, except Options.Next
// which is merged per button value.
package message
