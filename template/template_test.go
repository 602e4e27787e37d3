package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlguard/sqlguard"
)

func TestParseMapperMalformedXMLYieldsParseErrorFinding(t *testing.T) {
	m, err := ParseMapper("<mapper><select id=\"x\">")
	require.NoError(t, err)
	require.Len(t, m.Statements, 1)
	require.Len(t, m.Statements[0].Findings, 1)
	assert.Equal(t, "MYBATIS_PARSE_ERROR", m.Statements[0].Findings[0].Code)
	assert.Equal(t, sqlguard.RiskLow, m.Statements[0].Findings[0].Level)
}

func TestParseMapperBasicSelectWithBindAndWhere(t *testing.T) {
	xml := `<mapper>
	  <select id="findUser">
	    SELECT * FROM users WHERE id = #{id}
	  </select>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	require.Len(t, m.Statements, 1)

	stmt := m.Statements[0]
	assert.Equal(t, "findUser", stmt.ID)
	assert.Equal(t, "SELECT", stmt.Command)

	found := false
	walk(stmt.Body, func(n Node) {
		if bind, ok := n.(ParamBind); ok && bind.Name == "id" {
			found = true
			assert.Equal(t, HostWhere, bind.Host)
		}
	})
	assert.True(t, found)
}

func TestRawInterpolationFlaggedCritical(t *testing.T) {
	xml := `<mapper>
	  <select id="sortedUsers">
	    SELECT * FROM users ORDER BY ${sortColumn}
	  </select>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{})

	require.NotEmpty(t, stmt.Findings)
	assert.Equal(t, "UNSAFE_INTERPOLATION", stmt.Findings[0].Code)
	assert.Equal(t, sqlguard.RiskCritical, stmt.Findings[0].Level)
}

func TestRawInterpolationAllowedViaAllowList(t *testing.T) {
	xml := `<mapper>
	  <select id="sortedUsers">
	    SELECT * FROM users ORDER BY ${sortColumn}
	  </select>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{SortColumnAllowList: map[string]bool{"sortColumn": true}})

	for _, f := range stmt.Findings {
		assert.NotEqual(t, "UNSAFE_INTERPOLATION", f.Code)
	}
}

func TestMissingWhereBranchOnUnconditionalDelete(t *testing.T) {
	xml := `<mapper>
	  <delete id="wipe">
	    DELETE FROM users
	  </delete>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{})

	require.NotEmpty(t, stmt.Findings)
	assert.Equal(t, "MISSING_WHERE_BRANCH", stmt.Findings[0].Code)
}

func TestWhereWrapperNeutralizesConditionalBranch(t *testing.T) {
	xml := `<mapper>
	  <delete id="conditionalDelete">
	    DELETE FROM users
	    <where>
	      <if test="id != null">id = #{id}</if>
	    </where>
	  </delete>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{})

	for _, f := range stmt.Findings {
		assert.NotEqual(t, "MISSING_WHERE_BRANCH", f.Code)
	}
}

func TestDummyPredicateDetectedInStaticText(t *testing.T) {
	xml := `<mapper>
	  <select id="all">
	    SELECT id FROM users WHERE 1=1
	  </select>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{})

	foundDummy := false
	for _, f := range stmt.Findings {
		if f.Code == "DUMMY_PREDICATE" {
			foundDummy = true
		}
	}
	assert.True(t, foundDummy)
}

func TestUnresolvedIncludeYieldsLowParseError(t *testing.T) {
	xml := `<mapper>
	  <select id="withInclude">
	    SELECT * FROM users <include refid="missingFragment"/>
	  </select>
	</mapper>`

	m, err := ParseMapper(xml)
	require.NoError(t, err)
	stmt := m.Statements[0]
	Analyze(stmt, AnalyzeOptions{})

	found := false
	for _, f := range stmt.Findings {
		if f.Code == "MYBATIS_PARSE_ERROR" {
			found = true
			assert.Equal(t, sqlguard.RiskLow, f.Level)
		}
	}
	assert.True(t, found)
}
