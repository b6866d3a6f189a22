// Package prompts holds the generative-model prompt templates.
package prompts

import "fmt"

// TitleTemplate asks for a single short title. %s is the transcript.
const TitleTemplate = "Can you create a Youtube title for this video PICK BEST ONE DON'T GIVE OPTIONS -- response no more than 15 words: %s"

// DescriptionTemplate asks for a single description. %s is the transcript.
const DescriptionTemplate = "Can you create a Youtube description for this video PICK BEST ONE DON'T GIVE OPTIONS -- response no more than 300 words don't include your thought process either just the end result: %s"

// Title builds the title prompt for a transcript.
func Title(transcript string) string {
	return fmt.Sprintf(TitleTemplate, transcript)
}

// Description builds the description prompt for a transcript.
func Description(transcript string) string {
	return fmt.Sprintf(DescriptionTemplate, transcript)
}
