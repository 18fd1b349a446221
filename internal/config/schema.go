package config

import (
	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains the raw YAML document before typed decoding. Unknown keys
// are rejected so typos in rule names fail loudly instead of being ignored.
const schema = `
#Config: close({
	ai_coding_env?:     string
	max_file_size_mb?:  number & >0
	respect_gitignore?: bool
	workers?:           int & >=1
	whitelist?: close({
		files?:       [...string]
		directories?: [...string]
	})
	blacklist?: close({
		files?:                   [...string]
		directories?:             [...string]
		extensions?:              [...string]
		patterns?:                [...string]
		filename_substrings?:     [...string]
		datetime_stamp_yyyymmdd?: bool
	})
	data_sampling?: close({
		enabled?:           bool
		target_extensions?: [...string]
		include_header?:    bool
		head_rows?:         int & >=0
		tail_rows?:         int & >=0
	})
	lua_filter?: close({
		inline?:     string
		timeout_ms?: int & >0
	})
})
`

// validateSchema checks the decoded YAML tree against the CUE schema.
func validateSchema(tree any) error {
	if tree == nil {
		return nil
	}
	ctx := cuecontext.New()
	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		return errorf("internal schema error: %v", err)
	}
	def := sv.LookupPath(cue.ParsePath("#Config"))
	doc := ctx.Encode(tree)
	if err := doc.Err(); err != nil {
		return errorf("invalid config document: %v", err)
	}
	unified := def.Unify(doc)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return errorf("schema violation: %v", err)
	}
	return nil
}
