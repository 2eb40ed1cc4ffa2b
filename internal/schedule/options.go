package schedule

// Option is a step a reviewer can pick after looking at a card.
type Option struct {
	Label string `json:"label"`
	Step  string `json:"step"`
}

// Options lists the steps offered by the review UI, from "forgot" to "done".
var Options = []Option{
	{Label: "Quên", Step: "0"},
	{Label: "Mới Học", Step: "1"},
	{Label: "Cần Cố", Step: "2"},
	{Label: "Khó", Step: "3-6"},
	{Label: "Ổn", Step: "7-15"},
	{Label: "Dễ", Step: "16-30"},
	{Label: "Rất Dễ", Step: "30-50"},
	{Label: "Xong", Step: "0-50"},
}
