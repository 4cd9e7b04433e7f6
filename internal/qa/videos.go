package qa

import (
	"fmt"
	"strings"
)

// videoKeywords trigger the curated-video menu. Checked before everything
// else so "show me a video of catheterisation" never reaches the document
// pipeline.
var videoKeywords = []string{"video", "show me a video", "demonstration", "procedure video"}

const videoMenu = "Which procedure video do you want to see? Please reply with the number:\n" +
	"1. Administering of urokinase\n" +
	"2. Urinary catherisation\n" +
	"3. Administering insulin"

// procedureByChoice maps the numeric reply of the two-step flow to a
// procedure key. The flow is stateless: the client re-sends the digit as its
// next question.
var procedureByChoice = map[string]string{
	"1": "urokinase procedure",
	"2": "urinary catheterisation procedure",
	"3": "insulin administration procedure",
}

// clinicalVideos is the curated catalog: three procedures, three links each.
// Read-only for the lifetime of the process.
var clinicalVideos = map[string][]string{
	"urokinase procedure": {
		"https://youtu.be/YyS9c13LM14?si=yID0spLC3O8JVTDt",
		"https://youtu.be/XZ7-4Lkx_qw?si=jWbNjUNEJIomjPHQ",
		"https://youtu.be/FvaCABCOdHw?si=WEdx89rvqE0o9NLU",
	},
	"urinary catheterisation procedure": {
		"https://youtu.be/Dkf8o_zUzd8?si=r65GISUHKwBs2GPq",
		"https://youtu.be/Stc5mzIFJBY?si=0a8dwE9FD0SEZFXQ",
		"https://youtu.be/Mq4Yh0-iozY?si=OPZQW9isCjOrWNrY",
	},
	"insulin administration procedure": {
		"https://youtu.be/C0coWZbO-_E?si=Yh_boJzS8PBsnVh5",
		"https://youtu.be/RyGx--K75wM?si=SWkdusqnV7dG1n7_",
		"https://youtu.be/y1tul4BvK98?si=SdgwdGB99rYFq_-y",
	},
}

func wantsVideo(question string) bool {
	for _, kw := range videoKeywords {
		if strings.Contains(question, kw) {
			return true
		}
	}
	return false
}

func menuResponse() Response {
	return Response{Answer: videoMenu, Success: true, VideoPrompt: true}
}

func selectionResponse(choice string) Response {
	proc := procedureByChoice[choice]
	links := clinicalVideos[proc]
	if len(links) == 0 {
		return Response{Answer: fmt.Sprintf("Sorry, no curated videos found for %s.", proc), Success: false}
	}
	return Response{
		Answer:    fmt.Sprintf("Here are %d videos for %s:", len(links), proc),
		VideoURLs: links,
		Success:   true,
	}
}

func isSelection(question string) bool {
	_, ok := procedureByChoice[question]
	return ok
}
