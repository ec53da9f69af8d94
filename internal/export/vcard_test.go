package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbbyGrylls/impetus9-backend/internal/model"
)

func internalReg(roll, capPhone string, members ...model.TeamMember) model.Registration {
	return model.Registration{
		TeamName:        "Alpha",
		CapName:         "Alice",
		CapPhone:        capPhone,
		CapRoll:         roll,
		ParticipantType: model.ParticipantTypeInternal,
		Members:         members,
	}
}

func TestCardIDInternal(t *testing.T) {
	id := CardID("Hackathon", internalReg("101", "9876543210"))
	assert.Equal(t, "ha101", id)
}

func TestCardIDExternal(t *testing.T) {
	reg := model.Registration{
		CapPhone:        "+91 98765-43210",
		ParticipantType: model.ParticipantTypeExternal,
	}
	// Non-digits are stripped, then the last 8 digits are kept.
	assert.Equal(t, "haEXT76543210", CardID("Hackathon", reg))
}

func TestCardIDExternalShortPhone(t *testing.T) {
	reg := model.Registration{
		CapPhone:        "12-34",
		ParticipantType: model.ParticipantTypeExternal,
	}
	assert.Equal(t, "haEXT1234", CardID("Hackathon", reg))
}

func TestCardIDShortEventName(t *testing.T) {
	assert.Equal(t, "x101", CardID("X", internalReg("101", "9876543210")))
}

func TestCardIDPrefixIsLowercased(t *testing.T) {
	assert.Equal(t, "ro101", CardID("RoboRace", internalReg("101", "9876543210")))
}

func TestBuildVCardsCaptainAndFirstMember(t *testing.T) {
	vcf := BuildVCards("Hackathon", []model.Registration{
		internalReg("101", "9876543210", model.TeamMember{Name: "Bob", Phone: "9000000001"}),
	})

	assert.Contains(t, vcf, "FN:ha101-1\n")
	assert.Contains(t, vcf, "TEL;TYPE=CELL:9876543210\n")
	assert.Contains(t, vcf, "FN:ha101-2\n")
	assert.Contains(t, vcf, "TEL;TYPE=CELL:9000000001\n")
	assert.Equal(t, 2, strings.Count(vcf, "BEGIN:VCARD"))
	assert.Equal(t, 2, strings.Count(vcf, "END:VCARD"))
}

func TestBuildVCardsNoMemberCardWithoutPhone(t *testing.T) {
	vcf := BuildVCards("Hackathon", []model.Registration{
		internalReg("101", "9876543210", model.TeamMember{Name: "Bob", Phone: "   "}),
	})
	assert.Contains(t, vcf, "FN:ha101-1\n")
	assert.NotContains(t, vcf, "ha101-2")
	assert.Equal(t, 1, strings.Count(vcf, "BEGIN:VCARD"))
}

func TestBuildVCardsNoMembers(t *testing.T) {
	vcf := BuildVCards("Hackathon", []model.Registration{internalReg("101", "9876543210")})
	assert.Equal(t, 1, strings.Count(vcf, "BEGIN:VCARD"))
}

func TestBuildVCardsDuplicateIDsPreserved(t *testing.T) {
	// Two registrations deriving the same id both emit cards; the collision is
	// deliberately not deduplicated.
	regs := []model.Registration{
		internalReg("101", "9876543210"),
		internalReg("101", "9123456789"),
	}
	vcf := BuildVCards("Hackathon", regs)
	assert.Equal(t, 2, strings.Count(vcf, "FN:ha101-1\n"))
}

func TestBuildVCardsEmpty(t *testing.T) {
	assert.Empty(t, BuildVCards("Hackathon", nil))
}

func TestBuildVCardsWellFormed(t *testing.T) {
	vcf := BuildVCards("Hackathon", []model.Registration{internalReg("101", "9876543210")})
	lines := strings.Split(strings.TrimRight(vcf, "\n"), "\n")
	require.Equal(t, []string{
		"BEGIN:VCARD",
		"VERSION:3.0",
		"N:ha101-1",
		"FN:ha101-1",
		"TEL;TYPE=CELL:9876543210",
		"END:VCARD",
	}, lines)
}
