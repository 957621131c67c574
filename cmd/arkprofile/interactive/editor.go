// Package interactive provides the line-oriented edit shell for
// .arkprofile containers.
package interactive

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ark-tools/arkprofile-go/pkg/profile"
	"github.com/ark-tools/arkprofile-go/pkg/property"
	"github.com/ark-tools/arkprofile-go/pkg/tracelog"
)

// Editor drives an interactive session over one loaded profile.
type Editor struct {
	path    string
	profile *profile.Profile
	codec   profile.Codec
	rl      *readline.Instance
	dirty   bool
}

// New loads the profile at path and prepares the shell.
func New(path string, logger tracelog.Logger) (*Editor, error) {
	codec := profile.Codec{Logger: logger, Path: path}
	p, err := codec.Load(path)
	if err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "arkprofile> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Editor{path: path, profile: p, codec: codec, rl: rl}, nil
}

// Run executes the command loop until quit or EOF.
func (e *Editor) Run() error {
	defer e.rl.Close()

	out := e.rl.Stdout()
	fmt.Fprintf(out, "Loaded %s\n", e.path)
	for _, f := range e.profile.Findings {
		fmt.Fprintf(out, "warning: %s\n", f)
	}
	e.printHelp(out)

	for {
		line, err := e.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return nil
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		parts := strings.Fields(input)
		if quit := e.dispatch(out, strings.ToLower(parts[0]), parts[1:]); quit {
			return nil
		}
	}
}

// dispatch runs one command line. It reports whether the shell should
// exit.
func (e *Editor) dispatch(out io.Writer, cmd string, args []string) bool {
	switch cmd {
	case "help", "?":
		e.printHelp(out)
	case "open":
		e.cmdOpen(out, args)
	case "summary", "sum":
		e.cmdSummary(out)
	case "ls":
		e.cmdList(out, args)
	case "show":
		e.cmdShow(out, args)
	case "set":
		e.cmdSet(out, args)
	case "clear":
		e.cmdClear(out, args)
	case "clear-items":
		e.report(out, "ArkItems", e.profile.ClearArkItems())
	case "clear-dinos":
		e.report(out, "ArkTamedDinosData", e.profile.ClearTamedDinos())
	case "verify":
		e.cmdVerify(out)
	case "save":
		e.cmdSave(out, args)
	case "quit", "exit", "q":
		if e.dirty {
			fmt.Fprintln(out, "Unsaved changes discarded.")
		}
		return true
	default:
		fmt.Fprintf(out, "Unknown command: %s (try help)\n", cmd)
	}
	return false
}

func (e *Editor) printHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  open <path>            Load a different container
  summary                Show header fields and top-level counts
  ls [path]              List properties at a path
  show <path>            Show one property in detail
  set <path> <value>     Replace a scalar value
  clear <path>           Empty an array, map, or set
  clear-items            Empty the ark tribute item array
  clear-dinos            Empty the uploaded dino array
  verify                 Re-encode and re-check the edited tree
  save [path]            Write the container (default: the loaded file)
  quit                   Exit
`)
}

func (e *Editor) report(out io.Writer, name string, ok bool) {
	if ok {
		fmt.Fprintf(out, "%s cleared.\n", name)
		e.dirty = true
	} else {
		fmt.Fprintf(out, "%s not present.\n", name)
	}
}

func (e *Editor) cmdOpen(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: open <path>")
		return
	}
	if e.dirty {
		fmt.Fprintln(out, "Unsaved changes discarded.")
	}
	p, err := e.codec.Load(args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	e.path, e.profile, e.dirty = args[0], p, false
	fmt.Fprintf(out, "Loaded %s\n", e.path)
	for _, f := range p.Findings {
		fmt.Fprintf(out, "warning: %s\n", f)
	}
}

func (e *Editor) cmdSummary(out io.Writer) {
	fmt.Fprint(out, FormatSummary(e.profile))
}

func (e *Editor) cmdList(out io.Writer, args []string) {
	list := e.profile.Properties
	if len(args) > 0 {
		n, err := Resolve(e.profile.Properties, args[0])
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			return
		}
		if list = n.Children; list == nil {
			fmt.Fprintf(out, "%s has no nested properties\n", args[0])
			return
		}
	}
	fmt.Fprint(out, FormatList(list))
}

func (e *Editor) cmdShow(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: show <path>")
		return
	}
	n, err := Resolve(e.profile.Properties, args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	fmt.Fprint(out, FormatNode(n))
}

func (e *Editor) cmdSet(out io.Writer, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(out, "usage: set <path> <value>")
		return
	}
	n, err := Resolve(e.profile.Properties, args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	if err := SetValue(n, strings.Join(args[1:], " ")); err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	e.dirty = true
	fmt.Fprintf(out, "%s = %s\n", args[0], FormatValue(n))
}

func (e *Editor) cmdClear(out io.Writer, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(out, "usage: clear <path>")
		return
	}
	n, err := Resolve(e.profile.Properties, args[0])
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return
	}
	switch n.Type {
	case property.TypeArray, property.TypeMap, property.TypeSet:
		n.ClearItems()
		e.dirty = true
		fmt.Fprintf(out, "%s cleared.\n", args[0])
	default:
		fmt.Fprintf(out, "%s is a %s, not a container\n", args[0], n.Type)
	}
}

func (e *Editor) cmdVerify(out io.Writer) {
	buf, err := e.profile.Encode()
	if err != nil {
		fmt.Fprintf(out, "encode failed: %v\n", err)
		return
	}
	rep := profile.Verify(buf)
	if rep.OK() {
		fmt.Fprintf(out, "OK: %d properties, %d bytes\n", rep.PropertiesChecked, len(buf))
		return
	}
	for _, f := range rep.Findings {
		fmt.Fprintf(out, "  %s\n", f)
	}
}

func (e *Editor) cmdSave(out io.Writer, args []string) {
	path := e.path
	if len(args) > 0 {
		path = args[0]
	}
	if err := e.codec.Save(e.profile, path); err != nil {
		fmt.Fprintf(out, "save failed: %v\n", err)
		return
	}
	e.dirty = false
	fmt.Fprintf(out, "Saved %s\n", path)
}

// Resolve walks a dotted path with optional [index] element selectors,
// e.g. "MyArkData.ArkItems[0].ItemQuantity".
func Resolve(list property.List, path string) (*property.Node, error) {
	segments := strings.Split(path, ".")
	var node *property.Node
	for _, seg := range segments {
		name := seg
		index := -1
		if open := strings.IndexByte(seg, '['); open >= 0 {
			if !strings.HasSuffix(seg, "]") {
				return nil, fmt.Errorf("malformed selector %q", seg)
			}
			idx, err := strconv.Atoi(seg[open+1 : len(seg)-1])
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("malformed index in %q", seg)
			}
			name, index = seg[:open], idx
		}

		node = list.Get(name)
		if node == nil {
			return nil, fmt.Errorf("no property %q", name)
		}
		if index >= 0 {
			if index >= len(node.Items) {
				return nil, fmt.Errorf("%s has %d elements", name, len(node.Items))
			}
			node = node.Items[index]
		}
		list = node.Children
	}
	if node == nil {
		return nil, fmt.Errorf("empty path")
	}
	return node, nil
}

// SetValue parses raw according to the node's type and replaces its
// value.
func SetValue(n *property.Node, raw string) error {
	switch n.Type {
	case property.TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("want true or false: %w", err)
		}
		n.SetBool(v)
	case property.TypeInt, property.TypeInt16, property.TypeInt64:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		n.SetInt(v)
	case property.TypeUInt16, property.TypeUInt32, property.TypeUInt64, property.TypeByte:
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return err
		}
		n.SetUint(v)
	case property.TypeFloat, property.TypeDouble:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		n.SetFloat(v)
	case property.TypeStr, property.TypeName:
		n.SetString(raw)
	case property.TypeObject:
		n.SetObjectPath(raw)
	default:
		return fmt.Errorf("cannot set a %s value", n.Type)
	}
	return nil
}
