package study

// sendDoneMsg is sent when a chat send has settled.
type sendDoneMsg struct {
	Err error
}
