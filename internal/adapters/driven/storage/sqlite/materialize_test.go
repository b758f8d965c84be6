package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrylabs/quarry/internal/core/domain"
)

func projectRow(id string, doc *domain.Document) joinedRow[domain.Project, domain.Document] {
	return joinedRow[domain.Project, domain.Document]{
		key:    id,
		parent: domain.Project{ID: id},
		child:  doc,
	}
}

func attachDocument(p *domain.Project, d domain.Document) {
	p.Documents = append(p.Documents, d)
}

func TestMaterialize_GroupsContiguousRows(t *testing.T) {
	// P1 arrives with two real children, P2 with one null-child row
	// followed by one real child.
	rows := []joinedRow[domain.Project, domain.Document]{
		projectRow("p1", &domain.Document{ID: "d1"}),
		projectRow("p1", &domain.Document{ID: "d2"}),
		projectRow("p2", nil),
		projectRow("p2", &domain.Document{ID: "d3"}),
	}

	projects := materialize(rows, attachDocument)

	require.Len(t, projects, 2)
	assert.Equal(t, "p1", projects[0].ID)
	require.Len(t, projects[0].Documents, 2)
	assert.Equal(t, "d1", projects[0].Documents[0].ID)
	assert.Equal(t, "d2", projects[0].Documents[1].ID)

	assert.Equal(t, "p2", projects[1].ID)
	require.Len(t, projects[1].Documents, 1)
	assert.Equal(t, "d3", projects[1].Documents[0].ID)
}

func TestMaterialize_NullChildEstablishesParent(t *testing.T) {
	rows := []joinedRow[domain.Project, domain.Document]{
		projectRow("p1", nil),
	}

	projects := materialize(rows, attachDocument)

	require.Len(t, projects, 1)
	assert.Equal(t, "p1", projects[0].ID)
	// The collection stays nil, not empty: no child ever arrived.
	assert.Nil(t, projects[0].Documents)
}

func TestMaterialize_EmptyInput(t *testing.T) {
	projects := materialize(nil, attachDocument)
	assert.Nil(t, projects)
}

func TestMaterialize_PreservesArrivalOrder(t *testing.T) {
	rows := []joinedRow[domain.Project, domain.Document]{
		projectRow("p3", nil),
		projectRow("p1", nil),
		projectRow("p2", nil),
	}

	projects := materialize(rows, attachDocument)

	require.Len(t, projects, 3)
	assert.Equal(t, "p3", projects[0].ID)
	assert.Equal(t, "p1", projects[1].ID)
	assert.Equal(t, "p2", projects[2].ID)
}
