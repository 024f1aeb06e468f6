package models

// RecognitionLabel is a label produced by the camera recognition feature.
// It is a different set from Emotion.
type RecognitionLabel string

const (
	LabelHappy     RecognitionLabel = "happy"
	LabelSad       RecognitionLabel = "sad"
	LabelAngry     RecognitionLabel = "angry"
	LabelSurprised RecognitionLabel = "surprised"
	LabelNeutral   RecognitionLabel = "neutral"
)

// RecognitionLabels lists the labels in display order
var RecognitionLabels = []RecognitionLabel{LabelHappy, LabelSad, LabelAngry, LabelSurprised, LabelNeutral}

// RecognitionFeedback is the text shown to the child for a label
type RecognitionFeedback struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

var recognitionFeedback = map[RecognitionLabel]RecognitionFeedback{
	LabelHappy:     {Name: "开心", Description: "你看起来很开心呢！继续保持好心情吧！"},
	LabelSad:       {Name: "伤心", Description: "看起来有点难过呢，要不要和爸爸妈妈说说？"},
	LabelAngry:     {Name: "生气", Description: "深呼吸，数到10，让自己平静下来吧！"},
	LabelSurprised: {Name: "惊讶", Description: "哇！发现什么有趣的事情了吗？"},
	LabelNeutral:   {Name: "平静", Description: "保持专注，继续加油哦！"},
}

// Feedback returns the display text for l
func (l RecognitionLabel) Feedback() RecognitionFeedback {
	return recognitionFeedback[l]
}

// RecognitionResult is the output of one recognition request
type RecognitionResult struct {
	Label      RecognitionLabel    `json:"emotion"`
	Confidence float64             `json:"confidence"`
	Feedback   RecognitionFeedback `json:"feedback"`
}
