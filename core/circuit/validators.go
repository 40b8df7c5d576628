package circuit

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/stemquest/core"
)

var (
	componentTypeTag  = "componenttype"
	componentTypeText = "must be one of battery, bulb, switch, motor, resistor or buzzer"

	rotationTag  = "rotation"
	rotationText = "must be one of 0, 90, 180 or 270"

	terminalTag  = "terminal"
	terminalText = "must be of the form <component id>:a or <component id>:b"

	paletteDupTag  = "palettedup"
	paletteDupText = "a component type can only appear once on the palette"

	batteryCapTag  = "batterycap"
	batteryCapText = "a level allows at most one battery"

	// minimum similarity for a "did you mean" suggestion
	suggestMinRatio = .6
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(componentTypeTag, componentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, componentTypeTag, componentTypeText)

	_ = validate.RegisterValidation(rotationTag, rotationValidation)
	core.RegisterCustomTranslation(validate, translator, rotationTag, rotationText)

	_ = validate.RegisterValidation(terminalTag, terminalValidation)
	core.RegisterCustomTranslation(validate, translator, terminalTag, terminalText)

	validate.RegisterStructValidation(levelStructValidation, LevelSpec{})
	core.RegisterCustomTranslation(validate, translator, paletteDupTag, paletteDupText)
	core.RegisterCustomTranslation(validate, translator, batteryCapTag, batteryCapText)
}

func componentTypeValidation(fl validator.FieldLevel) bool {
	return ComponentType(fl.Field().String()).IsValid()
}

func rotationValidation(fl validator.FieldLevel) bool {
	return Rotation(fl.Field().Int()).IsValid()
}

func terminalValidation(fl validator.FieldLevel) bool {
	_, err := ParseTerminalID(fl.Field().String())
	return err == nil
}

func levelStructValidation(sl validator.StructLevel) {
	lvl := sl.Current().Interface().(LevelSpec)

	seen := make(map[ComponentType]bool, len(lvl.Palette))
	for _, item := range lvl.Palette {
		if seen[item.Type] {
			sl.ReportError(lvl.Palette, "palette", "Palette", paletteDupTag, "")
			return
		}
		seen[item.Type] = true
	}
	if lvl.Cap(Battery) > 1 {
		sl.ReportError(lvl.Palette, "palette", "Palette", batteryCapTag, "")
	}
}

// suggestComponentType returns the valid type name closest to s, if close enough.
func suggestComponentType(s string) (ComponentType, bool) {
	s = core.CleanString(s, true)
	if s == "" {
		return "", false
	}

	var best ComponentType
	var bestRatio float64
	for _, t := range ComponentTypes {
		ratio := difflib.NewMatcher(strings.Split(s, ""), strings.Split(string(t), "")).Ratio()
		if ratio > bestRatio {
			best, bestRatio = t, ratio
		}
	}
	if bestRatio < suggestMinRatio {
		return "", false
	}
	return best, true
}
