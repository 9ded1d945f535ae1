package ime

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Component describes the engine to the IBus daemon.
type Component struct {
	XMLName     xml.Name          `xml:"component"`
	Name        string            `xml:"name"`
	Description string            `xml:"description"`
	Exec        string            `xml:"exec"`
	Version     string            `xml:"version"`
	Author      string            `xml:"author"`
	License     string            `xml:"license"`
	TextDomain  string            `xml:"textdomain"`
	Engines     []ComponentEngine `xml:"engines>engine"`
}

// ComponentEngine is one engine entry of a component.
type ComponentEngine struct {
	Name        string `xml:"name"`
	Language    string `xml:"language"`
	License     string `xml:"license"`
	Author      string `xml:"author"`
	Layout      string `xml:"layout"`
	LongName    string `xml:"longname"`
	Description string `xml:"description"`
	Rank        int    `xml:"rank"`
	Symbol      string `xml:"symbol"`
}

// NewComponent returns the component for an engine binary at execPath.
func NewComponent(execPath, engineName, version string) Component {
	if engineName == "" {
		engineName = "kanakey"
	}
	return Component{
		Name:        "org.freedesktop.IBus.Kanakey",
		Description: "Kanakey Japanese input",
		Exec:        execPath + " --ibus",
		Version:     version,
		Author:      "kanakey",
		License:     "MIT",
		TextDomain:  "kanakey",
		Engines: []ComponentEngine{{
			Name:        engineName,
			Language:    "ja",
			License:     "MIT",
			Author:      "kanakey",
			Layout:      "jp",
			LongName:    "Kanakey",
			Description: "Japanese input with dead-key diacritics",
			Rank:        50,
			Symbol:      "あ",
		}},
	}
}

// Marshal renders the component file.
func (c Component) Marshal() ([]byte, error) {
	out, err := xml.MarshalIndent(c, "", "    ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// ComponentDir is where IBus looks for per-user component files.
func ComponentDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "ibus", "component"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "ibus", "component"), nil
}

// InstallComponent writes c into dir and returns the file path.
func InstallComponent(dir string, c Component) (string, error) {
	data, err := c.Marshal()
	if err != nil {
		return "", fmt.Errorf("render component: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, componentFile(c))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	return path, nil
}

// UninstallComponent removes the file InstallComponent wrote. A missing
// file is not an error.
func UninstallComponent(dir string, c Component) error {
	err := os.Remove(filepath.Join(dir, componentFile(c)))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func componentFile(c Component) string {
	name := "kanakey"
	if len(c.Engines) > 0 {
		name = c.Engines[0].Name
	}
	return name + ".xml"
}
