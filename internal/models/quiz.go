package models

// OptionsPerQuestion is the number of answer choices shown per question
const OptionsPerQuestion = 4

// QuizOption is one selectable answer
type QuizOption struct {
	Expression Emotion `json:"expression"`
	ImageURL   string  `json:"imageUrl"`
}

// QuizQuestion asks the child to pick the image matching Expression
type QuizQuestion struct {
	ID         int          `json:"id"`
	Expression Emotion      `json:"expression"`
	ImageURL   string       `json:"imageUrl"`
	Options    []QuizOption `json:"options"`
}

// CorrectIndex returns the position of the matching option, or -1
func (q *QuizQuestion) CorrectIndex() int {
	for i, o := range q.Options {
		if o.Expression == q.Expression {
			return i
		}
	}
	return -1
}
