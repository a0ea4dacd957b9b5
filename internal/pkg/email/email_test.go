package email

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ue-andes/nomina-backend-go/internal/config"
)

func testService() *emailServiceImpl {
	return &emailServiceImpl{cfg: config.SMTPConfig{
		From:     "nomina@andes.edu.ec",
		FromName: "Nomina UE Andes",
	}}
}

func TestPayslipMessageAttachmentContentType(t *testing.T) {
	s := testService()

	msg := string(s.payslipMessage(
		"maria@andes.edu.ec", "Rol de Pagos", "Adjunto",
		[]byte("<html></html>"), "RP_Julio2025_1712345678_MariaAndrade.html"))

	assert.Contains(t, msg, "Content-Type: text/html")
	assert.NotContains(t, msg, "application/pdf")
	assert.Contains(t, msg, `filename="RP_Julio2025_1712345678_MariaAndrade.html"`)
}

func TestPayslipMessageUnknownExtensionFallsBack(t *testing.T) {
	s := testService()

	msg := string(s.payslipMessage(
		"maria@andes.edu.ec", "Rol de Pagos", "Adjunto",
		[]byte{0x01, 0x02}, "payslip.bin"))

	assert.Contains(t, msg, "Content-Type: application/octet-stream")
}

func TestSendSkipsWithoutSMTPHost(t *testing.T) {
	s := testService()

	err := s.SendPayslip("maria@andes.edu.ec", "Rol de Pagos", "Adjunto", []byte("<html>"), "rp.html")
	assert.NoError(t, err)
}
