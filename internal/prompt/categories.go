package prompt

import (
	"bytes"
	"encoding/json"
)

// Category is one finding class the classification prompts ask for.
type Category struct {
	Code string `json:"-"`
	Name string `json:"name"`
	Note string `json:"note"`
}

// Categories lists the benchmark finding classes in code order.
var Categories = []Category{
	{"C1", "Dental caries", "Clearly visible dental caries; early white-spot lesions are excluded."},
	{"C2", "Non-carious, unrestored tooth defect", "Tooth fractures or cervical defects not caused by caries and not yet restored, such as wedge-shaped defects. Excludes tooth wear."},
	{"C3", "Tooth wear or erosion", "Loss of tooth structure due to physiological or pathological wear, or erosion. Excludes carious defects and minor enamel cracks."},
	{"C4", "Gingival inflammation", "Gingival redness and swelling, with or without bleeding or alveolar bone resorption."},
	{"C5", "Gingival recession", "Recession of the gingival margin exposing the root surface, or visible black triangles."},
	{"C6", "Dental plaque or calculus", "Visible accumulation of plaque or calculus. Excludes occasional food debris."},
	{"C7", "Tooth discoloration", "Abnormal tooth color from staining, fluorosis or pulp necrosis, and chalky white demineralization spots. Excludes dark carious discoloration."},
	{"C8", "Partial edentulism", "One or more missing teeth with no residual root and no prosthetic replacement."},
	{"C9", "Residual root", "Complete loss of the clinical crown with only the root remaining."},
	{"C10", "Dental filling (direct filling)", "Direct restorative material on tooth surfaces, such as composite resin, amalgam, temporary fillings or gutta-percha."},
	{"C11", "Fixed prosthesis", "Crowns, bridges, veneers, inlays and other fixed prostheses."},
	{"C12", "Removable denture", "Partial and complete removable dentures."},
	{"C13", "Interdental spacing", "Spaces between teeth without missing teeth. Excludes black triangles from gingival recession."},
	{"C14", "Malocclusion or dental malalignment", "Rotation, crowding or displacement of one or more teeth. Orthodontic appliances alone do not imply malalignment."},
	{"C15", "Conventional orthodontic appliance", "Brackets, archwires, elastics and other conventional orthodontic materials."},
	{"C16", "Clear aligner orthodontic appliance", "Clear aligners, attachments, retainers and other components of invisible orthodontic systems."},
	{"C17", "Oral ulcer", "Recurrent aphthous and traumatic ulcers. Excludes periodontal redness or swelling."},
	{"C18", "Oral wound", "Extraction sockets, trauma-related or surgical wounds of the oral tissues. Excludes gingivitis bleeding."},
}

// categoryJSON renders Categories as a JSON object keyed by code, keeping
// code order rather than the lexical order a map would give.
func categoryJSON() json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range Categories {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(c.Code)
		body, _ := json.Marshal(c)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}
