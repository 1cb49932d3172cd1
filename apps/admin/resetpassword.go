package main

import (
	"context"

	"github.com/trezcool/timeoff/core/employee"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	emp, err := cli.empRepo.GetEmployee(ctx, employee.GetFilter{UsernameOrEmail: []string{uname}})
	if err != nil {
		return err
	}
	if err := emp.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.empRepo.UpdateEmployee(ctx, emp); err != nil {
		return err
	}
	return nil
}
