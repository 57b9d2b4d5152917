package prompt

import (
	"encoding/json"

	"github.com/a-h/templ"
)

const dentist = "You are a professional dentist. "

// Translate asks for every value of a Chinese annotation to be rendered in
// English dental terminology.
func Translate(caseJSON json.RawMessage) templ.Component {
	return join(
		text(dentist, "Below you will be given a dictionary.\n",
			"Please translate all the values in the dictionary into English, keeping the translation consistent with dental terminology.\n",
			"Keep the output in json format and do not output any additional content.\n\n[Input]:\n"),
		jsonBlock(caseJSON),
		text("\n[Output]:\nMust be output in json format.\n"),
	)
}

// Summarize asks for a natural-language image description built from an
// English annotation.
func Summarize(caseJSON json.RawMessage) templ.Component {
	return join(
		text(dentist, "You are given descriptive diagnostic texts in JSON format about a patient's intraoral image.\n\n",
			"Based on these texts, generate a detailed description of the image content.\n",
			"- Regions that are not mentioned may be described as normal, but nothing may contradict the input.\n",
			"- Respond in unstructured natural language, not bullet points or numbered lists.\n",
			"- Write as if you are looking at the image rather than reading text.\n\n",
			"[Input]:\n"),
		jsonBlock(caseJSON),
		text("\nYour output should be a JSON object with the key \"description\".\n\n",
			"[Output Template]:\n```json\n{\n    \"description\": \"<detailed description>\"\n}\n```\n",
			"Please output json directly without extra output.\n"),
	)
}

// ClassifyText asks for the categories supported by an annotation.
func ClassifyText(caseJSON json.RawMessage) templ.Component {
	return join(
		text(dentist, "You are given descriptive diagnostic texts about a patient in JSON format.\n",
			"Perform multi-class category extraction based on these texts.\n\n[Categories]:\n"),
		jsonBlock(categoryJSON()),
		text("\n[Input]:\n"),
		jsonBlock(caseJSON),
		categoryOutput("The evidence text from the input that supports the category.",
			"Do not include a category the input has no information about.\n",
			"Annotations with low_confidence set to true must not be used.\n"),
	)
}

// ClassifyImage asks for the categories visible in a clinical image.
func ClassifyImage() templ.Component {
	return join(
		text(dentist, "You are given a clinical image of a patient.\n",
			"Perform multi-class category extraction based on this image.\n\n[Categories]:\n"),
		jsonBlock(categoryJSON()),
		categoryOutput("The visual cues in the image that support the category.",
			"Only select categories that are visibly present in the image.\n",
			"The \"id\" and \"name\" must match one of the listed categories.\n",
			"An empty array is acceptable when no category applies.\n"),
	)
}

func categoryOutput(evidence string, rules ...string) templ.Component {
	parts := []string{
		"\nYour output should be a JSON array, where each element is a dictionary with the keys:\n",
		"- \"id\": The category ID (e.g., \"C1\", \"C2\")\n",
		"- \"name\": The category name\n",
		"- \"evidence\": " + evidence + "\n\n",
	}
	parts = append(parts, rules...)
	parts = append(parts, "\n[Output Template]:\n```json\n[\n    <extracted categories>\n]\n```\n")
	return text(parts...)
}

// CaptionImage asks for a free-form description of a clinical image.
func CaptionImage() templ.Component {
	return text(dentist, "You are given a clinical image of a patient. Generate a detailed natural language description of it.\n\n",
		"Your output should be a JSON object with one key, \"description\", holding a coherent paragraph. ",
		"Describe the imaging direction, the main anatomical subject and every observed abnormality, including pathological findings, dental defects and visible dental instruments. ",
		"Normal regions may be described when you are confident, without fabricated details.\n\n",
		"[Output Template]:\n```json\n{\n    \"description\": \"<detailed description>\"\n}\n```\n",
		"Please output json directly without extra output.\n")
}

// Refine asks for the abnormalities mentioned in a predicted caption.
func Refine(captionJSON json.RawMessage) templ.Component {
	return join(
		text(dentist, "You are given descriptive diagnostic texts in JSON format about a patient's intraoral image.\n\n",
			"List all observed abnormalities from the given texts.\n\n[Input]:\n"),
		jsonBlock(captionJSON),
		text("\nAn abnormality is any pathological finding, dental defect, or visible dental instrument associated with an abnormality. Do not describe normal findings.\n\n",
			"Your output should be a JSON array, where each element is a dictionary with the keys:\n",
			"- \"abnormality\": A summarized description of the abnormality\n",
			"- \"reason\": The supporting evidence\n\n",
			"[Output Template]:\n```json\n[\n    <extracted abnormalities>\n]\n```\n"),
	)
}

// Score asks for a confusion matrix between reference and predicted
// abnormality lists.
func Score(reference, prediction json.RawMessage) templ.Component {
	return join(
		text(dentist, "You are given two JSON inputs about a patient's intraoral image: ",
			"Reference holds the ground truth abnormality descriptions and Prediction holds descriptions generated by a model.\n\n[Reference]:\n"),
		jsonBlock(reference),
		text("\n[Prediction]:\n"),
		jsonBlock(prediction),
		text("\nCalculate the confusion matrix values: True Positive (TP), False Negative (FN), False Positive (FP) and True Negative (TN).\n\n",
			"Your output should be a JSON object with the keys \"TP\", \"FN\", \"FP\", \"TN\" (integers) and \"reason\".\n\n",
			"[Output Template]:\n```json\n{\n    <confusion matrix values>\n}\n```\n"),
	)
}

// AnswerOptions returns the option letters offered for a question type.
func AnswerOptions(questionType string) string {
	if questionType == "multiple_choice" {
		return `"A", "B", "C", or "D"`
	}
	return `"A" or "B"`
}

// AnswerQuestion asks for one answer to a visual question about an image.
func AnswerQuestion(question string, choice json.RawMessage, questionType string) templ.Component {
	quoted, _ := json.Marshal(question)
	body := append(append([]byte(`{"question":`), quoted...), []byte(`,"choice":`)...)
	if len(choice) == 0 {
		choice = json.RawMessage("null")
	}
	body = append(append(body, choice...), '}')
	return join(
		text(dentist, "You are given a clinical image of a patient and a multiple-choice question.\n",
			"Select only one correct answer based on the visual evidence in the image.\n\n[Question]:\n"),
		jsonBlock(body),
		text("\nYour output should be a JSON object with the keys:\n",
			"- \"answer\": Your selected option, one of ", AnswerOptions(questionType), ".\n",
			"- \"reason\": The supporting visual evidence.\n\n",
			"Do not include anything outside the JSON.\n\n",
			"[Output Template]:\n```json\n{\n    \"answer\": <selected option>,\n    \"reason\": <evidence>\n}\n```\n"),
	)
}
