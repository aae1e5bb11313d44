package extracts

import (
	"strings"
	"testing"
)

func mustTable(t *testing.T, data string) *Table {
	t.Helper()
	table, _, err := ReadTable(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	return table
}

func TestParseProjects(t *testing.T) {
	table := mustTable(t, "id;acronym;status;startDate;endDate;totalCost;ecMaxContribution;fundingScheme\n"+
		"101;ALPHA;SIGNED;2020-01-01;2024-01-01;4000000,50;3000000;RIA\n"+
		";NOID;SIGNED;;;;;\n"+ // keine ID
		"101;DUP;SIGNED;;;;;\n"+ // doppelte ID
		"102;BETA;CLOSED;;;;;CSA\n") // ohne Daten

	projects, skipped := ParseProjects(table)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(projects) != 2 {
		t.Fatalf("projects = %d, want 2", len(projects))
	}

	p := projects[0]
	if p.ID != "101" || p.Acronym != "ALPHA" {
		t.Errorf("unexpected first project: %+v", p)
	}
	if p.TotalCost != 4000000.50 {
		t.Errorf("TotalCost = %v", p.TotalCost)
	}
	if p.DurationDays != 1461 || p.DurationYears != 4 {
		t.Errorf("duration = (%d, %d)", p.DurationDays, p.DurationYears)
	}
	if p.EcContributionPerYear != 750000 {
		t.Errorf("EcContributionPerYear = %v, want 750000", p.EcContributionPerYear)
	}

	// Ohne Laufzeit keine Pro-Jahr-Werte
	if projects[1].EcContributionPerYear != 0 {
		t.Errorf("EcContributionPerYear = %v, want 0", projects[1].EcContributionPerYear)
	}
}

func TestParseOrganizations(t *testing.T) {
	table := mustTable(t, "projectID;organisationID;name;country;activityType;role;ecContribution;SME\n"+
		"101;org-a;Uni Freiburg;DE;HES;coordinator;1000000;false\n"+
		"102;org-a;Uni Freiburg;DE;HES;participant;500000;false\n"+ // gleiche Einrichtung, zweites Projekt
		"101;org-a;Uni Freiburg;DE;HES;coordinator;1000000;false\n"+ // doppelter Link
		"101;org-b;Acme;DE;PRC;participant;200000;true\n"+
		";org-c;Orphan Org;FR;REC;;;\n"+ // Einrichtung ohne Projektbezug
		"101;;No Org;;;;;\n") // keine Organisations-ID

	orgs, links, skipped := ParseOrganizations(table)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(orgs) != 3 {
		t.Fatalf("orgs = %d, want 3", len(orgs))
	}
	if len(links) != 3 {
		t.Fatalf("links = %d, want 3", len(links))
	}

	// Eingabereihenfolge: org-a, org-b, org-c
	if orgs[1].ID != "org-b" || !orgs[1].SME {
		t.Errorf("unexpected org order: %+v", orgs)
	}
	if orgs[2].ID != "org-c" {
		t.Errorf("orphan org missing: %+v", orgs[2])
	}
	if links[0].Role != "coordinator" || links[0].EcContribution != 1000000 {
		t.Errorf("unexpected first link: %+v", links[0])
	}
}

func TestParseSciVoc(t *testing.T) {
	table := mustTable(t, "projectID;euroSciVocCode;euroSciVocPath;euroSciVocTitle\n"+
		"101;23;/natural sciences/physical sciences/astronomy;astronomy\n"+
		"102;23;/natural sciences/physical sciences/astronomy;astronomy\n"+ // Code dedupliziert, Link bleibt
		"101;;;broken\n"+
		";24;/x;x\n")

	codes, links, skipped := ParseSciVoc(table)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(codes) != 1 {
		t.Fatalf("codes = %d, want 1", len(codes))
	}
	if codes[0].Path != "/natural sciences/physical sciences/astronomy" {
		t.Errorf("path = %q", codes[0].Path)
	}
	if len(links) != 2 {
		t.Errorf("links = %d, want 2", len(links))
	}
}

func TestParseDeliverables(t *testing.T) {
	table := mustTable(t, "deliverableID;projectID;title;deliverableType\n"+
		"d1;101;Final Report;Report\n"+
		"d1;101;Final Report;Report\n"+ // doppelte ID
		"d2;;Orphan;Report\n"+ // ohne Projektbezug
		"d3;102;Data Set;Open Research Data Pilot\n")

	out, skipped := ParseDeliverables(table)
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if len(out) != 2 {
		t.Fatalf("deliverables = %d, want 2", len(out))
	}
	if out[1].DeliverableType != "Open Research Data Pilot" {
		t.Errorf("type = %q", out[1].DeliverableType)
	}
}

func TestParsePublications(t *testing.T) {
	table := mustTable(t, "id;projectID;title;isPublishedAs;publishedYear\n"+
		"p1;101;Some Paper;Peer reviewed articles;2022\n"+
		"p2;101;Other Paper;Conference proceedings;2023.0\n"+
		";101;No ID;;\n")

	out, skipped := ParsePublications(table)
	if skipped != 1 {
		t.Errorf("skipped = %d, want 1", skipped)
	}
	if len(out) != 2 {
		t.Fatalf("publications = %d, want 2", len(out))
	}
	if out[1].PublishedYear != 2023 {
		t.Errorf("PublishedYear = %d, want 2023", out[1].PublishedYear)
	}
}
