package descriptor

import (
	"encoding/xml"
	"fmt"
	"os"
	"strings"
)

// Pom is the subset of a Maven POM the orchestrator reads.
type Pom struct {
	GroupID    string
	ArtifactID string
	Version    string
	Packaging  string

	// Parent coordinates, when the POM declares a <parent> block. A POM may
	// inherit groupId and version from its parent, in which case GroupID and
	// Version above are already the effective (inherited) values.
	ParentGroupID    string
	ParentArtifactID string
	ParentVersion    string

	// Modules lists the relative paths from an aggregator POM's <modules>.
	Modules []string

	// Dependencies holds every declared dependency's coordinates, internal
	// and external alike. Filtering to internal edges happens in the graph
	// builder, not here.
	Dependencies []Coordinate
}

type pomXML struct {
	XMLName    xml.Name `xml:"project"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Version    string   `xml:"version"`
	Packaging  string   `xml:"packaging"`
	Parent     struct {
		GroupID    string `xml:"groupId"`
		ArtifactID string `xml:"artifactId"`
		Version    string `xml:"version"`
	} `xml:"parent"`
	Modules struct {
		Module []string `xml:"module"`
	} `xml:"modules"`
	Dependencies struct {
		Dependency []struct {
			GroupID    string `xml:"groupId"`
			ArtifactID string `xml:"artifactId"`
		} `xml:"dependency"`
	} `xml:"dependencies"`
}

// ParsePom decodes POM XML from a byte slice.
func ParsePom(data []byte) (*Pom, error) {
	var raw pomXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse pom: %w", err)
	}
	if strings.TrimSpace(raw.ArtifactID) == "" {
		return nil, fmt.Errorf("parse pom: missing <artifactId>")
	}

	p := &Pom{
		GroupID:          strings.TrimSpace(raw.GroupID),
		ArtifactID:       strings.TrimSpace(raw.ArtifactID),
		Version:          strings.TrimSpace(raw.Version),
		Packaging:        strings.TrimSpace(raw.Packaging),
		ParentGroupID:    strings.TrimSpace(raw.Parent.GroupID),
		ParentArtifactID: strings.TrimSpace(raw.Parent.ArtifactID),
		ParentVersion:    strings.TrimSpace(raw.Parent.Version),
	}

	// Maven inheritance: groupId and version fall back to the parent's.
	if p.GroupID == "" {
		p.GroupID = p.ParentGroupID
	}
	if p.Version == "" {
		p.Version = p.ParentVersion
	}
	if p.GroupID == "" {
		return nil, fmt.Errorf("parse pom: %s has no groupId (own or inherited)", p.ArtifactID)
	}

	for _, m := range raw.Modules.Module {
		if m = strings.TrimSpace(m); m != "" {
			p.Modules = append(p.Modules, m)
		}
	}
	for _, d := range raw.Dependencies.Dependency {
		g := strings.TrimSpace(d.GroupID)
		a := strings.TrimSpace(d.ArtifactID)
		if g == "" || a == "" {
			continue
		}
		p.Dependencies = append(p.Dependencies, Coordinate{Group: g, ID: a})
	}
	return p, nil
}

// LoadPom reads and parses the POM at path.
func LoadPom(path string) (*Pom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParsePom(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Coordinate returns the POM's own coordinates.
func (p *Pom) Coordinate() Coordinate {
	return Coordinate{Group: p.GroupID, ID: p.ArtifactID}
}
