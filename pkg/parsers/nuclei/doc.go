/*
Package nuclei turns nuclei JSON Lines output (nuclei -jsonl) into normalized
findings ready to be stored.

Every line of a nuclei results file is a standalone JSON object describing one
matched template. The package handles one such line at a time; splitting a file
into lines is left to the caller (see package linestream).

# Basic Usage

Assemble a finding from one line:

	asm := nuclei.NewAssembler()
	f, err := asm.Assemble(line)
	if errors.Is(err, finding.ErrParse) {
		// the line is not a single JSON object; skip it
	}

Every call generates a new identifier, so the same line assembled twice yields two
findings with different IDs.

# JSON Values

Lines are decoded into Value, a tagged variant over the JSON kinds. Objects keep
their member order and numbers keep their literal text, so structured fields can be
written back as JSON text that matches the input:

	v, err := nuclei.Decode([]byte(`{"info":{"tags":["cve","rce"]}}`))
	tags, ok := nuclei.Lookup(v, nuclei.Key("info"), nuclei.Key("tags"))
	fmt.Println(ok, tags.JSON()) // true ["cve","rce"]

Lookup short-circuits: a missing key anywhere along the path, or a step into a
scalar, reports ok == false.

# Normalization Rules

  - absent or null fields become nil (stored as NULL)
  - arrays and objects become their compact JSON text
  - strings are kept verbatim, numbers keep their literal text, booleans become "true" or "false"
  - cve-id and cwe-id keep only their first element
  - a missing ip becomes "0.0.0.0"
  - a missing curl-command becomes "" and single quotes in it are doubled
*/
package nuclei
