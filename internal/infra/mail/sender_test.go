package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

func TestRenderLeadAlert(t *testing.T) {
	lead := entity.Lead{ID: "l1", Name: "Maria <Silva>", Phone: "11988887777"}

	subject, body, err := renderLeadAlert(lead, "Casa X")

	require.NoError(t, err)
	assert.Equal(t, "Novo lead: Maria <Silva> - Casa X", subject)
	assert.Contains(t, body, "Maria &lt;Silva&gt;")
	assert.Contains(t, body, "11988887777")
	assert.NotContains(t, body, "E-mail")
}
