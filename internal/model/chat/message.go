package chat

// Request is the body accepted by the chat relay.
type Request struct {
	UserInput *string `json:"user_input"`
}

// Response is returned for every relayed message, including failed generations.
type Response struct {
	Response  string `json:"response"`
	Emotion   string `json:"emotion"`
	MemoryTag string `json:"memory_tag"`
}
