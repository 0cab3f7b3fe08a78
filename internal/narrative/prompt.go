package narrative

import (
	"bytes"
	"regexp"
	"text/template"
)

// MissingMarker is the phrase the model is told to return when it knows nothing
// about a breed.
const MissingMarker = "Information about this breed is not available."

const systemPrompt = "You are an assistant that gives accurate information about dog breeds. " +
	"Answer in Markdown. Prefer localized titles when linking encyclopedia articles."

var userPrompt = template.Must(template.New("narrative").Parse(`You are a dog expert. Describe the dog breed "{{.Breed}}" in Markdown.
If you have no information about this breed, reply with exactly: "{{.Missing}}"

Include:
1. **Short description** - 2 to 3 sentences.
2. **Temperament** - the key traits.
3. **Lifespan** - in years.
4. **Image** - one Markdown image in the form ![{{.Breed}}](url).
5. **Encyclopedia links** - real, working links for:
   - [Russian](https://ru.wikipedia.org/wiki/...)
   - [Ukrainian](https://uk.wikipedia.org/wiki/...)
   - [English](https://en.wikipedia.org/wiki/...)

If there is no article in one of these languages, leave that link out.
{{- if .Structured}}

Reply with a JSON object with two string fields: "markdown" holding the full
Markdown answer, and "image_file" holding the encyclopedia file name of the
image (for example "Akita_inu.jpg"), or "" if you do not know one.
{{- end}}
`))

type promptData struct {
	Breed      string
	Missing    string
	Structured bool
}

func renderPrompt(breed string, structured bool) (string, error) {
	var buf bytes.Buffer
	if err := userPrompt.Execute(&buf, promptData{Breed: breed, Missing: MissingMarker, Structured: structured}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// missingPattern matches the absent-information marker in the languages the
// model has been seen to answer in.
var missingPattern = regexp.MustCompile(`(?i)information about this breed is not available|информация о.*отсутствует|інформація про.*відсутня`)

// IsMissing reports whether content is the absent-information marker.
func IsMissing(content string) bool {
	return missingPattern.MatchString(content)
}
