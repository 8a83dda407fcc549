package services

import (
	"fmt"
	"strings"

	"luastyle/internal/domain/valueobjects"
)

// BuildDirective renders the text instruction shared by every variant.
// Image 1 is always the subject and image 2 the garment.
func BuildDirective(variant valueobjects.VariantConfig, accessories valueobjects.AccessorySelection) string {
	lines := []string{
		`SUPREME IDENTITY MANDATE. DO NOT DEVIATE FROM THESE RULES.`,
		`1. MASTER IDENTITY (IMAGE 1):`,
		`- This is the TARGET PERSON. The final result MUST be this exact person.`,
		`- Keep 100% of the FACE (eyes, nose, mouth, expression), HAIR (color, cut, texture), SKIN TONE and BODY TYPE.`,
		`- Mixing physical traits from Image 2 into this person is forbidden.`,
		`2. TEXTURE SOURCE (IMAGE 2):`,
		`- This image contains the desired GARMENT.`,
		`- GOLDEN RULE: COMPLETELY ignore any human in Image 2. Discard the face, skin, hair and gender of that person.`,
		`- Treat Image 2 as an invisible mannequin holding fabric. Extract only the design, color and texture of the garment.`,
		`3. COMPOSITION:`,
		`- Transfer the garment from Image 2 onto the body of the person in Image 1.`,
		`- Fit the garment realistically to the shape and pose of the person in Image 1.`,
		fmt.Sprintf(`- Visual style: %s. Setting: %s.%s`, variant.Style, variant.Setting, accessoryInstruction(accessories)),
		`CONCLUSION: The goal is a realistic photo in which the PERSON FROM IMAGE 1 wears the GARMENT FROM IMAGE 2. The identity of Image 1 is the absolute priority.`,
	}
	return strings.Join(lines, "\n")
}

func accessoryInstruction(accessories valueobjects.AccessorySelection) string {
	if accessories.IsEmpty() {
		return ""
	}
	return fmt.Sprintf(" Additionally, equip the person with these specific accessories: %s.", strings.Join(accessories.Labels(), ", "))
}
