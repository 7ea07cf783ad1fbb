package sqlinline

const QSelectUserCredits = `--sql 6d5228a8-d35f-4368-b03f-a45896f2250e
select user_id, current, monthly, tier
from user_credits
where user_id = $1::text;
`

// QGrantMonthlyAllowance resets the balance to the tier allowance.
const QGrantMonthlyAllowance = `--sql 1ab23f38-be36-403e-aa25-ec0050057ac3
insert into user_credits (user_id, current, monthly, tier, updated_at)
values ($1::text, $2::int, $2::int, $3::text, now())
on conflict (user_id) do update set
    current = excluded.monthly,
    monthly = excluded.monthly,
    tier = excluded.tier,
    updated_at = now()
returning user_id, current, monthly, tier;
`
