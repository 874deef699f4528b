// Command cuadros-usuarios creates an account or resets its password.
//
//	echo -n 'contraseña' | cuadros-usuarios -usuario ana
//
// The password is read from CUADROS_NEW_PASSWORD or, when unset, from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	libconfig "inspecciones/backend/libs/config"
	"inspecciones/backend/libs/db"
	"inspecciones/backend/libs/logging"
	"inspecciones/backend/services/cuadros-service/internal/password"
	"inspecciones/backend/services/cuadros-service/internal/repository"
	"inspecciones/backend/services/cuadros-service/internal/service"
)

type config struct {
	Database struct {
		DSN string `yaml:"dsn" env:"CUADROS_POSTGRES_DSN"`
	} `yaml:"database"`
}

func main() {
	usuario := flag.String("usuario", "", "account to create or update")
	flag.Parse()

	logger, err := logging.NewLogger("cuadros-usuarios")
	if err != nil {
		fmt.Fprintf(os.Stderr, "cuadros-usuarios: build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // best-effort flush

	if err := run(*usuario, logger); err != nil {
		if verr, ok := service.AsValidation(err); ok {
			fmt.Fprintln(os.Stderr, verr.Message)
			os.Exit(2)
		}
		logger.Fatal("provisioning failed", zap.Error(err))
	}
}

func run(usuario string, logger *zap.Logger) error {
	var cfg config
	if err := libconfig.LoadConfig(&cfg); err != nil {
		return err
	}
	pass, err := readPassword(os.Stdin)
	if err != nil {
		return err
	}

	sqlDB, err := db.NewPostgresDB(cfg.Database.DSN, db.PoolOptions{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	svc := service.NewProvisionService(repository.NewUserRepository(sqlDB), password.NewBcryptHasher(0), logger)
	return svc.Provision(ctx, usuario, pass)
}

func readPassword(stdin io.Reader) (string, error) {
	if pass, ok := os.LookupEnv("CUADROS_NEW_PASSWORD"); ok {
		return pass, nil
	}
	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
