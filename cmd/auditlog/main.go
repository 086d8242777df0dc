// auditlog prints the recent password recovery events of one account.
//
//	go run ./cmd/auditlog -phone +15550100200 [-limit 20]
//	go run ./cmd/auditlog -user-id <id>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"password-recovery/internal/audit/repository"
	"password-recovery/internal/config"
	"password-recovery/internal/db"
	"password-recovery/internal/phone"
	"password-recovery/internal/platform/logging"
	userdomain "password-recovery/internal/user/domain"
	userrepo "password-recovery/internal/user/repository"
)

func main() {
	rawPhone := flag.String("phone", "", "phone number of the account")
	userID := flag.String("user-id", "", "account id (instead of -phone)")
	limit := flag.Int("limit", 20, "number of events to show")
	offset := flag.Int("offset", 0, "number of newest events to skip")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New(os.Stderr, cfg.LogLevel, true)
	if (*rawPhone == "") == (*userID == "") {
		log.Fatal().Msg("exactly one of -phone and -user-id is required")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	var u *userdomain.User
	if *rawPhone != "" {
		p, err := phone.Normalize(*rawPhone)
		if err != nil {
			log.Fatal().Str("phone", *rawPhone).Msg("invalid phone number")
		}
		u, err = users.GetByPhone(ctx, p)
		if err != nil {
			log.Fatal().Err(err).Msg("lookup user")
		}
	} else {
		u, err = users.GetByID(ctx, *userID)
		if err != nil {
			log.Fatal().Err(err).Msg("lookup user")
		}
	}
	if u == nil {
		log.Fatal().Msg("no such account")
	}

	logs, err := repository.NewPostgresRepository(conn).ListByUser(ctx, u.ID, int32(*limit), int32(*offset))
	if err != nil {
		log.Fatal().Err(err).Msg("list audit logs")
	}

	fmt.Printf("%s (%s, %s)\n", u.ID, phone.Mask(u.Phone), u.Status)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tACTION\tIP\tMETADATA")
	for _, a := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.CreatedAt.Local().Format(time.DateTime), a.Action, a.IP, a.Metadata)
	}
	_ = tw.Flush()
}
