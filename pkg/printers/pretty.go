package printers

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/syncpanel/pkg/api"
	"tableflip.dev/syncpanel/pkg/app"
	"tableflip.dev/syncpanel/pkg/prefs"
)

type PrettyPrint struct {
	Out         io.Writer
	ShowSecrets bool
	ShowDevices bool
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	_, _ = c.Fprintf(pp.out(), " - %d %s", count, noun)
	if count != 1 {
		_, _ = c.Fprint(pp.out(), "s")
	}
	_, _ = c.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

func (pp *PrettyPrint) Report(r app.ReportResult) {
	pp.TitleWithCount("Folders", r.Folders, "folder")
	if len(r.Sections) == 0 {
		pp.none()
	} else {
		tbl := uitable.New()
		tbl.Separator = "  "
		tbl.MaxColWidth = 60
		if pp.ShowSecrets {
			tbl.AddRow(bold("Path"), bold("Content"), bold("Secret"))
		} else {
			tbl.AddRow(bold("Path"), bold("Content"))
		}
		for _, s := range r.Sections {
			if pp.ShowSecrets {
				tbl.AddRow(s.Path, s.Content, faint(s.Secret))
			} else {
				tbl.AddRow(s.Path, s.Content)
			}
		}
		_, _ = fmt.Fprintln(pp.out(), tbl)
		pp.NewLine()
	}

	if pp.ShowDevices {
		pp.TitleWithCount("Devices", r.Devices, "device")
		if r.Devices == 0 {
			pp.none()
		} else {
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold("Device"), bold("Folder"), bold("Status"))
			for _, s := range r.Sections {
				for _, d := range s.Devices {
					name := d.Name
					if name == "" {
						name = d.PeerID
					}
					tbl.AddRow(name, s.Path, d.Status)
				}
			}
			_, _ = fmt.Fprintln(pp.out(), tbl)
			pp.NewLine()
		}
	}

	_, _ = color.New(color.FgHiBlue).Fprintln(pp.out(), r.Transfer)
}

// Transfer prints a one-line status for watch mode.
func (pp *PrettyPrint) Transfer(folders, devices int, label string) {
	_, _ = fmt.Fprintf(pp.out(), "%s  %d folders, %d devices  %s\n",
		faint(nowStamp()), folders, devices, color.New(color.FgHiBlue).Sprint(label))
}

func (pp *PrettyPrint) Secrets(path string, s api.Secrets) {
	pp.Title(path)
	tbl := uitable.New()
	tbl.Separator = "  "
	if s.ReadWrite != "" {
		tbl.AddRow(bold("Read & Write"), s.ReadWrite)
	}
	tbl.AddRow(bold("Read Only"), s.ReadOnly)
	if s.Encryption != "" {
		tbl.AddRow(bold("Encrypted"), s.Encryption)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// Prefs prints preferences sorted by name. Known names carry their type.
func (pp *PrettyPrint) Prefs(title string, values api.Prefs) {
	pp.TitleWithCount(title, len(values), "preference")
	if len(values) == 0 {
		pp.none()
		return
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Name"), bold("Value"), bold("Type"))
	for _, name := range names {
		d := prefs.Lookup(name)
		kind := d.Kind.String()
		if d.Advanced {
			kind += " (advanced)"
		}
		tbl.AddRow(name, values.String(name), faint(kind))
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

func (pp *PrettyPrint) Info(address, daemonVersion string, interval fmt.Stringer) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Daemon"), address)
	tbl.AddRow(bold("Version"), daemonVersion)
	tbl.AddRow(bold("Poll interval"), interval.String())
	_, _ = fmt.Fprintln(pp.out(), tbl)
}
