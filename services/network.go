package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
)

// ErrMinParticipants signalisiert eine ungültige Filter-Konfiguration:
// eine Kollaboration braucht mindestens zwei Parteien.
var ErrMinParticipants = errors.New("min_participants must be at least 2")

// defaultLayoutSeed keeps the spring embedding reproducible when the caller
// does not pin a seed.
const defaultLayoutSeed = 1

// NetworkFilter sind die konjunktiv verknüpften Filter des Network-Builders.
// Zero values mean "filter not set"; MinParticipants defaults to 2.
type NetworkFilter struct {
	// Exakter Treffer gegen field/field_class oder Präfix eines euroSciVoc-Pfads
	Field string `json:"field"`

	Countries     []string `json:"countries"`
	ActivityTypes []string `json:"activity_types"`

	MinParticipants int `json:"min_participants"`
	// Nach dem Filtern bleiben höchstens MaxProjects Projekte übrig,
	// Auswahl in aufsteigender Projekt-ID (stabil und dokumentiert).
	MaxProjects int `json:"max_projects"`

	StartYear       int      `json:"start_year"`
	FundingSchemes  []string `json:"funding_schemes"`
	MinContribution float64  `json:"min_contribution"`

	// Seed für das Spring-Embedding; 0 nutzt den festen Default-Seed.
	Seed uint64 `json:"seed"`
}

// NetworkNode ist eine platzierte Einrichtung im Kollaborationsgraphen.
type NetworkNode struct {
	OrganizationID string  `json:"organization_id"`
	Name           string  `json:"name"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
}

// NetworkEdge ist eine gewichtete Kante: Anzahl gemeinsamer Projekte.
type NetworkEdge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Weight   int    `json:"weight"`
}

// NetworkLayout ist das renderbare Ergebnis des Network-Builders.
// EdgeX/EdgeY flatten all edges into one drawable path; a nil entry is the
// sentinel separator between consecutive edges (renders as a JSON null, the
// same break marker plotly uses).
type NetworkLayout struct {
	Title string        `json:"title"`
	Nodes []NetworkNode `json:"nodes"`
	Edges []NetworkEdge `json:"edges"`
	EdgeX []*float64    `json:"edge_x"`
	EdgeY []*float64    `json:"edge_y"`
}

// orderedGraph liefert die Knoten-Iteratoren ID-sortiert statt in
// Map-Reihenfolge. Die Kräfte-Summation des Embeddings ist damit bei gleichem
// Seed bitidentisch über wiederholte Aufrufe.
type orderedGraph struct {
	*simple.WeightedUndirectedGraph
}

func (g orderedGraph) Nodes() graph.Nodes {
	return sortedNodes(g.WeightedUndirectedGraph.Nodes())
}

func (g orderedGraph) From(id int64) graph.Nodes {
	return sortedNodes(g.WeightedUndirectedGraph.From(id))
}

func sortedNodes(it graph.Nodes) graph.Nodes {
	nodes := graph.NodesOf(it)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
	return iterator.NewOrderedNodes(nodes)
}

// orgPair ist der ungeordnete Schlüssel einer Kollaborationskante.
type orgPair struct {
	a, b string
}

func pairOf(u, v string) orgPair {
	if u > v {
		u, v = v, u
	}
	return orgPair{a: u, b: v}
}

func matchesField(view *ProjectView, field string) bool {
	for _, f := range view.Fields {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	for _, f := range view.FieldClasses {
		if strings.EqualFold(f, field) {
			return true
		}
	}
	lowered := strings.ToLower(field)
	for _, p := range view.SciVocPaths {
		if strings.HasPrefix(strings.ToLower(strings.Trim(p, "/")), strings.Trim(lowered, "/")) {
			return true
		}
	}
	return false
}

func containsFold(haystack []string, needle string) bool {
	for _, h := range haystack {
		if strings.EqualFold(h, needle) {
			return true
		}
	}
	return false
}

// BuildCollaborationNetwork wendet die Filter konjunktiv auf den Snapshot an,
// baut pro überlebendem Projekt eine Clique über dessen Einrichtungen und
// berechnet ein seeded Force-Directed-Layout. Pure function: the snapshot is
// only read, repeated calls with identical inputs yield identical output.
func BuildCollaborationNetwork(s *Snapshot, f NetworkFilter) (*NetworkLayout, error) {
	minParticipants := f.MinParticipants
	if minParticipants == 0 {
		minParticipants = 2
	}
	if minParticipants < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrMinParticipants, f.MinParticipants)
	}

	title := "Institution Collaboration Network"
	if f.Field != "" {
		title = fmt.Sprintf("Collaboration Network for %q", f.Field)
	}

	weights := make(map[orgPair]int)
	names := make(map[string]string)
	kept := 0

	// Snapshot-Reihenfolge ist ID-aufsteigend, damit ist der MaxProjects-Cap
	// deterministisch.
	for _, view := range s.Projects() {
		if f.MaxProjects > 0 && kept >= f.MaxProjects {
			break
		}
		if f.Field != "" && !matchesField(view, f.Field) {
			continue
		}
		if len(f.FundingSchemes) > 0 && !containsFold(f.FundingSchemes, view.FundingScheme) {
			continue
		}
		if f.StartYear != 0 && (view.StartDate == nil || view.StartDate.Year() != f.StartYear) {
			continue
		}
		if f.MinContribution > 0 && view.EcMaxContribution < f.MinContribution {
			continue
		}

		// Organisations-Filter wirken auf die Teilnehmermenge des Projekts
		orgIDs := make([]string, 0, len(view.Participants))
		seen := make(map[string]struct{}, len(view.Participants))
		for _, p := range view.Participants {
			if len(f.ActivityTypes) > 0 && !containsFold(f.ActivityTypes, p.ActivityType) {
				continue
			}
			if len(f.Countries) > 0 && !containsFold(f.Countries, p.Country) {
				continue
			}
			if _, dup := seen[p.OrganizationID]; dup {
				continue
			}
			seen[p.OrganizationID] = struct{}{}
			orgIDs = append(orgIDs, p.OrganizationID)
			names[p.OrganizationID] = p.Name
		}
		if len(orgIDs) < minParticipants {
			continue
		}
		kept++

		// Clique über alle Teilnehmerpaare; wiederholte Ko-Beteiligung über
		// mehrere Projekte akkumuliert das Kantengewicht.
		for i := 0; i < len(orgIDs); i++ {
			for j := i + 1; j < len(orgIDs); j++ {
				weights[pairOf(orgIDs[i], orgIDs[j])]++
			}
		}
	}

	result := &NetworkLayout{Title: title, Nodes: []NetworkNode{}, Edges: []NetworkEdge{}}
	if len(weights) == 0 {
		// Leere Treffermenge ist ein gültiger, leerer Graph
		return result, nil
	}

	// Knoten sind genau die Einrichtungen mit mindestens einer Kante
	nodeSet := make(map[string]struct{})
	for pair := range weights {
		nodeSet[pair.a] = struct{}{}
		nodeSet[pair.b] = struct{}{}
	}
	nodeIDs := make([]string, 0, len(nodeSet))
	for id := range nodeSet {
		nodeIDs = append(nodeIDs, id)
	}
	sort.Strings(nodeIDs)

	index := make(map[string]int64, len(nodeIDs))
	for i, id := range nodeIDs {
		index[id] = int64(i)
	}

	for pair, w := range weights {
		result.Edges = append(result.Edges, NetworkEdge{SourceID: pair.a, TargetID: pair.b, Weight: w})
	}
	sort.Slice(result.Edges, func(i, j int) bool {
		if result.Edges[i].SourceID != result.Edges[j].SourceID {
			return result.Edges[i].SourceID < result.Edges[j].SourceID
		}
		return result.Edges[i].TargetID < result.Edges[j].TargetID
	})

	// Spring-Embedding (Eades) mit festem Seed: gleicher Seed, gleiche Koordinaten
	g := simple.NewWeightedUndirectedGraph(0, 0)
	for _, e := range result.Edges {
		g.SetWeightedEdge(g.NewWeightedEdge(
			simple.Node(index[e.SourceID]),
			simple.Node(index[e.TargetID]),
			float64(e.Weight),
		))
	}
	seed := f.Seed
	if seed == 0 {
		seed = defaultLayoutSeed
	}
	eades := layout.EadesR2{Repulsion: 1, Rate: 0.05, Updates: 30, Theta: 0.2, Src: rand.NewSource(seed)}
	optimizer := layout.NewOptimizerR2(orderedGraph{g}, eades.Update)
	for optimizer.Update() {
	}

	coords := make(map[string][2]float64, len(nodeIDs))
	for _, id := range nodeIDs {
		vec := optimizer.LayoutNodeR2(index[id]).Coord2
		coords[id] = [2]float64{vec.X, vec.Y}
		result.Nodes = append(result.Nodes, NetworkNode{
			OrganizationID: id,
			Name:           names[id],
			X:              vec.X,
			Y:              vec.Y,
		})
	}

	// Kanten zu einem zeichenbaren Pfad mit Trenn-Sentinel konkatenieren
	fp := func(v float64) *float64 { return &v }
	for _, e := range result.Edges {
		src, tgt := coords[e.SourceID], coords[e.TargetID]
		result.EdgeX = append(result.EdgeX, fp(src[0]), fp(tgt[0]), nil)
		result.EdgeY = append(result.EdgeY, fp(src[1]), fp(tgt[1]), nil)
	}
	return result, nil
}
