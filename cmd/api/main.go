package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ue-andes/nomina-backend-go/internal/config"
	appHTTP "github.com/ue-andes/nomina-backend-go/internal/handler/http"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/database"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/dateutil"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/email"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/googleapi"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/renderer"
	"github.com/ue-andes/nomina-backend-go/internal/pkg/storage"
	"github.com/ue-andes/nomina-backend-go/internal/repository/postgresql"
	calendarService "github.com/ue-andes/nomina-backend-go/internal/service/calendar"
	directoryService "github.com/ue-andes/nomina-backend-go/internal/service/directory"
	documentService "github.com/ue-andes/nomina-backend-go/internal/service/document"
	employeeService "github.com/ue-andes/nomina-backend-go/internal/service/employee"
	payrollService "github.com/ue-andes/nomina-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	if err := dateutil.SetLocation(cfg.App.Timezone); err != nil {
		log.Fatal("Failed to set timezone:", err)
	}
	// Amounts go over the wire as JSON numbers, matching the clients.
	decimal.MarshalJSONWithoutQuotes = true

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	employeeRepo := postgresql.NewEmployeeRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.BasePath, cfg.Storage.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}

	payslipRenderer, err := renderer.NewTemplateRenderer()
	if err != nil {
		log.Fatal("Failed to initialize payslip renderer:", err)
	}
	emailService := email.NewEmailService(cfg.SMTP)

	payrollSvc := payrollService.NewPayrollService(db, payrollRepo, employeeRepo, fileStorage, cfg.Payroll.MinimumWage)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo, payrollSvc, fileStorage, cfg.Payroll.EmployeeRootFolder)
	documentSvc := documentService.NewDocumentService(employeeRepo, payrollRepo, fileStorage, payslipRenderer, emailService)

	var directorySvc *directoryService.Service
	calendarSvc := calendarService.NewCalendarService(nil)
	if cfg.WorkspaceEnabled() {
		clients, err := googleapi.NewClients(context.Background(), cfg.Google.CredentialsFile, cfg.Google.Subject)
		if err != nil {
			log.Fatal("Failed to initialize google workspace clients:", err)
		}
		googleDirectory := directoryService.NewGoogleDirectory(clients.Directory, cfg.Google)
		directorySvc = directoryService.NewDirectoryService(
			googleDirectory, employeeSvc, payrollSvc, cfg.Google, cfg.Payroll.MinimumWage)
		calendarSvc = calendarService.NewCalendarService(clients.Calendar)
	}

	handler := appHTTP.NewHandler(payrollSvc, employeeSvc, documentSvc, directorySvc, calendarSvc)
	router := appHTTP.NewRouter(cfg, handler)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
