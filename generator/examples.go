package generator

import "sort"

// Examples are starter descriptions offered by the UI and CLI.
var Examples = map[string]string{
	"todo":       "Create a todo list app where users can add, complete, and delete tasks. Store tasks in localStorage.",
	"calculator": "Build a calculator app with buttons for numbers 0-9 and operations +, -, *, /. Include equals button and clear button.",
	"weather":    "Create a weather app showing temperature, humidity, and weather condition for a city.",
	"timer":      "Build a timer/stopwatch app with start, stop, and reset buttons. Display time in minutes and seconds.",
	"pdf":        "Create a PDF summarizer app that uploads a PDF, extracts text, and summarizes it using the LLM API.",
}

// ExampleNames returns the example keys in sorted order.
func ExampleNames() []string {
	names := make([]string, 0, len(Examples))
	for k := range Examples {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
