package domain

// Option represents a possible answer for a question.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Question models an MCQ question as delivered to participants. The backend
// strips the correct flag before the quiz reaches a client.
type Question struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Points  int      `json:"points"` // defaults to 1 if zero
}

// Quiz is a collection of questions plus the raw payload it was decoded
// from. Raw is kept because downstream consumers render fields this client
// does not model.
type Quiz struct {
	ID        string         `json:"id"`
	Title     string         `json:"title,omitempty"`
	Questions []Question     `json:"questions"`
	Raw       map[string]any `json:"-"`
}

// AnswerSubmission is one participant answer.
type AnswerSubmission struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// SubmitResult summarizes the backend's response to a submission.
type SubmitResult struct {
	Score          int            `json:"score"`
	TotalQuestions int            `json:"totalQuestions"`
	Raw            map[string]any `json:"-"`
}

// JoinResult is the authoritative (session, quiz) pair returned by the
// join operation. The quiz id here outranks any embedded in polled payloads.
type JoinResult struct {
	SessionID string
	QuizID    string
}
