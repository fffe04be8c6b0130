/*
Package dsl builds agent definitions in Go instead of TOML, YAML or JSON files.

The result is the same *config.Config that config.Load produces, with the same
defaults, so it can be passed straight to parlance.NewFromConfig.

Example usage:

	cfg, err := dsl.New().
		Persona("A support agent", "Move to research when you need facts.", "Be brief.").
		Add("start").
		Prompt("Greet the user and find out what they need.").
		Go("research", "exit").
		Add("research").
		Prompt("Use the search action, then report back.").
		Temperature(0.2).
		Go("start").
		Add("error").
		Prompt("Apologize and return to the start.").
		Build()
*/
package dsl
